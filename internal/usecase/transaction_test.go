package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterCommit_RunsEveryOperation(t *testing.T) {
	steps := NewAfterCommit(quietLogger())
	var ran []string

	steps.AddOperation("first", func(context.Context) error {
		ran = append(ran, "first")
		return errors.New("audit down")
	})
	steps.AddOperation("second", func(context.Context) error {
		ran = append(ran, "second")
		panic("nil webhook")
	})
	steps.AddOperation("third", func(context.Context) error {
		ran = append(ran, "third")
		return nil
	})

	failures := steps.Execute(context.Background())
	assert.Equal(t, []string{"first", "second", "third"}, ran)
	require.Len(t, failures, 2)
	assert.Contains(t, failures[0].Error(), "operation 'first' failed")
	assert.Contains(t, failures[1].Error(), "operation 'second' panicked")
}

func TestAfterCommit_Empty(t *testing.T) {
	assert.Empty(t, NewAfterCommit(nil).Execute(context.Background()))
}
