package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRecordLeadDistributed(t *testing.T) {
	before := counterValue(t, leadsDistributed.WithLabelValues("junk"))
	RecordLeadDistributed("junk")
	assert.Equal(t, before+1, counterValue(t, leadsDistributed.WithLabelValues("junk")))
}

func TestRecordNotification(t *testing.T) {
	before := counterValue(t, notificationsTotal.WithLabelValues(NotificationSkipped))
	RecordNotification(NotificationSkipped, 0)
	RecordNotification(NotificationSuccess, 120*time.Millisecond)
	assert.Equal(t, before+1, counterValue(t, notificationsTotal.WithLabelValues(NotificationSkipped)))
}

func TestRecordPointerResets(t *testing.T) {
	before := counterValue(t, pointerResets)
	RecordPointerResets(3)
	assert.Equal(t, before+3, counterValue(t, pointerResets))
}
