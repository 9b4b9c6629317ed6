package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

func roster(states ...string) []entity.Slot {
	out := make([]entity.Slot, len(states))
	for i, st := range states {
		out[i] = entity.Slot{ID: int64(i + 1), QueuePosition: i, IsActive: true, IsPaused: st == "p"}
	}
	return out
}

func TestSelectNext(t *testing.T) {
	cases := []struct {
		name   string
		roster []entity.Slot
		start  int
		pos    int
		ok     bool
	}{
		{"first available", roster("a", "a", "a"), 0, 0, true},
		{"starts at pointer", roster("a", "a", "a"), 2, 2, true},
		{"skips paused", roster("a", "p", "a"), 1, 2, true},
		{"wraps around", roster("a", "a", "p"), 2, 0, true},
		{"out of range start", roster("a", "a"), 5, 0, true},
		{"negative start", roster("p", "a"), -1, 1, true},
		{"all paused", roster("p", "p", "p"), 1, 0, false},
		{"empty", nil, 0, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slot, pos, ok := SelectNext(tc.roster, tc.start)
			assert.Equal(t, tc.ok, ok)
			if !tc.ok {
				assert.Nil(t, slot)
				return
			}
			assert.Equal(t, tc.pos, pos)
			assert.Equal(t, &tc.roster[pos], slot)
		})
	}
}

func TestNextPosition(t *testing.T) {
	assert.Equal(t, 1, NextPosition(0, 3))
	assert.Equal(t, 0, NextPosition(2, 3))
	assert.Equal(t, 0, NextPosition(0, 1))
	assert.Equal(t, 0, NextPosition(4, 0))
}
