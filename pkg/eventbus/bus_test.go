package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/raywall/fast-sam-local/pkg/invoke"
	"github.com/raywall/fast-sam-local/pkg/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingInvoker guarda as invocações recebidas; fn define o comportamento.
type recordingInvoker struct {
	mu     sync.Mutex
	calls  map[string][]events.CloudWatchEvent
	fn     func(t invoke.Target) ([]byte, error)
	notify chan string
}

func newRecordingInvoker(fn func(t invoke.Target) ([]byte, error)) *recordingInvoker {
	if fn == nil {
		fn = func(invoke.Target) ([]byte, error) { return []byte(`{"ok":true}`), nil }
	}
	return &recordingInvoker{calls: map[string][]events.CloudWatchEvent{}, fn: fn}
}

func (r *recordingInvoker) Invoke(ctx context.Context, t invoke.Target, payload []byte) ([]byte, error) {
	var event events.CloudWatchEvent
	_ = json.Unmarshal(payload, &event)

	r.mu.Lock()
	r.calls[t.Function] = append(r.calls[t.Function], event)
	r.mu.Unlock()

	if r.notify != nil {
		r.notify <- t.Function
	}
	return r.fn(t)
}

func (r *recordingInvoker) callsFor(name string) []events.CloudWatchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.CloudWatchEvent(nil), r.calls[name]...)
}

func sub(function string, sources, detailTypes []string) routing.Subscription {
	return routing.Subscription{
		Function:    function,
		Trigger:     "On" + function,
		Sources:     sources,
		DetailTypes: detailTypes,
		Target:      invoke.Target{Function: function, Module: function, Entry: "handler"},
	}
}

func drain(t *testing.T, b *Bus) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, b.Shutdown(ctx))
}

func TestBus_MatchRequiresSourceAndDetailType(t *testing.T) {
	inv := newRecordingInvoker(nil)
	bus := New(inv, routing.Subscriptions{
		sub("Decrement", []string{"counter"}, []string{"Incremented"}),
		sub("Audit", []string{"counter", "admin"}, []string{"Incremented", "Reset"}),
		sub("Other", []string{"orders"}, []string{"Incremented"}),
	})

	out, err := bus.Publish(context.Background(), []Entry{
		{Source: "counter", DetailType: "Incremented", Detail: `{"n":1}`},
		{Source: "admin", DetailType: "Reset", Detail: `{}`},
		{Source: "counter", DetailType: "Unknown", Detail: `{}`},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, out.FailedEntryCount)
	require.Len(t, out.Entries, 3)
	for _, e := range out.Entries {
		assert.NotEmpty(t, e.EventID)
	}

	drain(t, bus)

	assert.Len(t, inv.callsFor("Decrement"), 1)
	assert.Len(t, inv.callsFor("Audit"), 2)
	assert.Empty(t, inv.callsFor("Other"))
}

func TestBus_EventEnvelope(t *testing.T) {
	inv := newRecordingInvoker(nil)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bus := New(inv, routing.Subscriptions{sub("Decrement", []string{"counter"}, []string{"Incremented"})}, WithClock(func() time.Time { return fixed }))

	out, err := bus.Publish(context.Background(), []Entry{{Source: "counter", DetailType: "Incremented", Detail: `{"count":3}`}})
	require.NoError(t, err)
	drain(t, bus)

	calls := inv.callsFor("Decrement")
	require.Len(t, calls, 1)
	event := calls[0]

	assert.Equal(t, "0", event.Version)
	assert.Equal(t, out.Entries[0].EventID, event.ID)
	assert.Equal(t, "counter", event.Source)
	assert.Equal(t, "Incremented", event.DetailType)
	assert.Equal(t, "123456789012", event.AccountID)
	assert.Equal(t, "us-east-1", event.Region)
	assert.Equal(t, fixed, event.Time)
	assert.Equal(t, []string{}, event.Resources)
	assert.JSONEq(t, `{"count":3}`, string(event.Detail))
}

func TestBus_DeclaredIDAndVersionArePreserved(t *testing.T) {
	inv := newRecordingInvoker(nil)
	bus := New(inv, routing.Subscriptions{sub("Decrement", []string{"counter"}, []string{"Incremented"})})

	out, err := bus.Publish(context.Background(), []Entry{{
		ID: "evt-123", Version: "1", Source: "counter", DetailType: "Incremented", Detail: `{}`,
	}})
	require.NoError(t, err)
	drain(t, bus)

	calls := inv.callsFor("Decrement")
	require.Len(t, calls, 1)
	assert.Equal(t, "evt-123", calls[0].ID)
	assert.Equal(t, "1", calls[0].Version)
	assert.Equal(t, "evt-123", out.Entries[0].EventID)
}

func TestBus_SubscriberFailureIsIsolated(t *testing.T) {
	inv := newRecordingInvoker(func(t invoke.Target) ([]byte, error) {
		switch t.Function {
		case "Fails":
			return nil, errors.New("falhou")
		case "Panics":
			panic("boom")
		}
		return []byte(`null`), nil
	})
	bus := New(inv, routing.Subscriptions{
		sub("Fails", []string{"s"}, []string{"d"}),
		sub("Panics", []string{"s"}, []string{"d"}),
		sub("Works", []string{"s"}, []string{"d"}),
	})

	out, err := bus.Publish(context.Background(), []Entry{{Source: "s", DetailType: "d", Detail: `{}`}})
	require.NoError(t, err)
	assert.Equal(t, 0, out.FailedEntryCount)

	drain(t, bus)
	assert.Len(t, inv.callsFor("Works"), 1)
	assert.Len(t, inv.callsFor("Fails"), 1)
	assert.Len(t, inv.callsFor("Panics"), 1)
}

func TestBus_MalformedDetailFailsOnlyItsEntry(t *testing.T) {
	inv := newRecordingInvoker(nil)
	bus := New(inv, routing.Subscriptions{sub("Decrement", []string{"counter"}, []string{"Incremented"})})

	out, err := bus.Publish(context.Background(), []Entry{
		{Source: "counter", DetailType: "Incremented", Detail: `{quebrado`},
		{Source: "counter", DetailType: "Incremented", Detail: `{"ok":true}`},
		{Source: "", DetailType: "Incremented"},
	})
	require.NoError(t, err)
	drain(t, bus)

	assert.Equal(t, 2, out.FailedEntryCount)
	assert.Equal(t, ErrorCodeMalformedDetail, out.Entries[0].ErrorCode)
	assert.Empty(t, out.Entries[0].EventID)
	assert.NotEmpty(t, out.Entries[1].EventID)
	assert.Equal(t, ErrorCodeInvalidArgument, out.Entries[2].ErrorCode)
	assert.Len(t, inv.callsFor("Decrement"), 1)
}

func TestBus_PublisherDoesNotWait(t *testing.T) {
	release := make(chan struct{})
	inv := newRecordingInvoker(func(invoke.Target) ([]byte, error) {
		<-release
		return nil, nil
	})
	inv.notify = make(chan string, 1)
	bus := New(inv, routing.Subscriptions{sub("Slow", []string{"s"}, []string{"d"})})

	_, err := bus.Publish(context.Background(), []Entry{{Source: "s", DetailType: "d"}})
	require.NoError(t, err)

	select {
	case <-inv.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("assinante não foi disparado")
	}

	// Shutdown expira enquanto a entrega está presa
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Shutdown(ctx), context.DeadlineExceeded)

	close(release)
	drain(t, bus)
}

func TestBus_ClosedAndEmpty(t *testing.T) {
	bus := New(newRecordingInvoker(nil), nil)

	_, err := bus.Publish(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	drain(t, bus)
	_, err = bus.Publish(context.Background(), []Entry{{Source: "s", DetailType: "d"}})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBus_Subscribe(t *testing.T) {
	inv := newRecordingInvoker(nil)
	bus := New(inv, nil)
	bus.Subscribe(sub("Late", []string{"s"}, []string{"d"}))
	assert.Len(t, bus.Subscriptions(), 1)

	_, err := bus.Publish(context.Background(), []Entry{{Source: "s", DetailType: "d"}})
	require.NoError(t, err)
	drain(t, bus)

	calls := inv.callsFor("Late")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{}`, string(calls[0].Detail))
}
