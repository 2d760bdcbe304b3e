package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHub_DeliversToUserSubscribers(t *testing.T) {
	hub := NewHub(4)
	mine := hub.Subscribe(1)
	defer mine.Close()
	theirs := hub.Subscribe(2)
	defer theirs.Close()

	hub.Notify(Event{Name: SyncHappened, UserID: 1, ItemID: "item-1", Message: "3 added"})

	select {
	case e := <-mine.C:
		assert.Equal(t, SyncHappened, e.Name)
		assert.Equal(t, "item-1", e.ItemID)
	default:
		t.Fatal("expected event for subscriber")
	}

	select {
	case e := <-theirs.C:
		t.Fatalf("unexpected event for other user: %+v", e)
	default:
	}
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(1)
	sub := hub.Subscribe(1)
	defer sub.Close()

	hub.Notify(Event{Name: SyncHappened, UserID: 1, Message: "first"})
	hub.Notify(Event{Name: SyncHappened, UserID: 1, Message: "second"})

	e := <-sub.C
	assert.Equal(t, "first", e.Message)
	select {
	case e := <-sub.C:
		t.Fatalf("expected dropped event, got %+v", e)
	default:
	}
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	hub := NewHub(1)
	sub := hub.Subscribe(7)
	require.Equal(t, 1, hub.Subscribers(7))

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.Subscribers(7))

	_, open := <-sub.C
	assert.False(t, open)

	// Notifying after close must not panic.
	hub.Notify(Event{UserID: 7})
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewLogNotifier(zap.New(core).Sugar())

	n.Notify(Event{Name: SyncCompleted, RunID: "run-1", UserID: 3, Message: "sync completed"})
	n.Notify(Event{Name: SyncError, RunID: "run-1", ItemID: "item-1", UserID: 3, Message: "sync failed"})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "item-1", entries[1].ContextMap()["item_id"])
}

func TestMulti(t *testing.T) {
	a, b := NewHub(1), NewHub(1)
	sa, sb := a.Subscribe(1), b.Subscribe(1)
	defer sa.Close()
	defer sb.Close()

	Multi{a, nil, b}.Notify(Event{UserID: 1, Message: "x"})

	assert.Len(t, sa.C, 1)
	assert.Len(t, sb.C, 1)
}
