package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledClientIsNoOp(t *testing.T) {
	c := NewClient("")
	assert.False(t, c.IsEnabled())

	// Must not panic or block with no configured sink
	c.LogEvent(context.Background(), &Event{Action: ActionInsert, Table: "contracts"})
}

func TestLogEventPostsToSink(t *testing.T) {
	received := make(chan Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, EventsEndpoint, r.URL.Path)

		var ev Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		w.WriteHeader(http.StatusCreated)
		received <- ev
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	require.True(t, c.IsEnabled())

	c.LogEvent(context.Background(), &Event{
		Actor:       7,
		Action:      ActionInsert,
		Table:       "contracts",
		RecordID:    42,
		Description: "contract created",
	})

	select {
	case ev := <-received:
		assert.Equal(t, uint(7), ev.Actor)
		assert.Equal(t, ActionInsert, ev.Action)
		assert.Equal(t, "contracts", ev.Table)
		assert.Equal(t, uint(42), ev.RecordID)
		assert.NotEmpty(t, ev.Timestamp)
	case <-time.After(2 * time.Second):
		t.Fatal("audit sink did not receive the event")
	}
}

func TestSinkFailureDoesNotSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	// LogEvent must return without error regardless of the sink's response
	c.LogEvent(context.Background(), &Event{Action: ActionInsert, Table: "contracts"})
	time.Sleep(100 * time.Millisecond)
}
