package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreProcessor_RunsInOrder(t *testing.T) {
	var order []int
	stage := func(i int) ProcessorFunc {
		return func(ctx context.Context) error {
			order = append(order, i)
			return nil
		}
	}

	err := NewPreProcessor([]ProcessorFunc{stage(0), stage(1), stage(2)}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestPreProcessor_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	ran := 0

	err := NewPreProcessor([]ProcessorFunc{
		func(ctx context.Context) error { ran++; return nil },
		func(ctx context.Context) error { ran++; return boom },
		func(ctx context.Context) error { ran++; return nil },
	}).Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stage[1] failed")
	assert.Equal(t, 2, ran)
}

func TestPreProcessor_CancelledBeforeStage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ran := 0

	err := NewPreProcessor([]ProcessorFunc{
		func(ctx context.Context) error { ran++; cancel(); return nil },
		func(ctx context.Context) error { ran++; return nil },
	}).Run(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "stage[1] not started")
	assert.Equal(t, 1, ran)
}
