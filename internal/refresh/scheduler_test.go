package refresh

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule_Disabled(t *testing.T) {
	c, err := Schedule(context.Background(), "", func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestSchedule_InvalidSpec(t *testing.T) {
	_, err := Schedule(context.Background(), "every tuesday", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestSchedule_Runs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	c, err := Schedule(ctx, "@every 1s", func(context.Context) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, c.Entries(), 1)

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}
