package observe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todowork/internal/observe"
)

func TestValue_GetReturnsInitial(t *testing.T) {
	v := observe.NewValue("loading")
	assert.Equal(t, "loading", v.Get())
}

func TestValue_SubscriberReceivesNextSnapshot(t *testing.T) {
	v := observe.NewValue(0)
	ch, cancel := v.Subscribe()
	defer cancel()

	v.Set(1)

	got, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, 1, got)
	assert.Equal(t, 1, v.Get())
}

func TestValue_SlowSubscriberSeesLatest(t *testing.T) {
	v := observe.NewValue(0)
	ch, cancel := v.Subscribe()
	defer cancel()

	v.Set(1)
	v.Set(2)
	v.Set(3)

	assert.Equal(t, 3, <-ch)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra snapshot %d", extra)
	default:
	}
}

func TestValue_CancelClosesChannel(t *testing.T) {
	v := observe.NewValue(0)
	ch, cancel := v.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// Publishing after cancel must not panic.
	v.Set(5)
	assert.Equal(t, 5, v.Get())
}

func TestValue_CloseStopsPublishing(t *testing.T) {
	v := observe.NewValue("a")
	ch, cancel := v.Subscribe()
	defer cancel()

	v.Close()
	_, ok := <-ch
	assert.False(t, ok)

	v.Set("b")
	assert.Equal(t, "a", v.Get())

	late, lateCancel := v.Subscribe()
	defer lateCancel()
	_, ok = <-late
	assert.False(t, ok)
}
