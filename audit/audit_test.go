package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/authsvc/log"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	gate   chan struct{}
	err    error
}

func (s *recordingSink) Emit(_ context.Context, e Event) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func TestDispatcherDelivers(t *testing.T) {
	sink := &recordingSink{}
	d, err := NewDispatcher(sink, 4, WithLogger(log.NewWithWriter(&bytes.Buffer{})))
	require.NoError(t, err)

	d.Emit(Event{Type: TypeLogin, UserID: 1, SessionID: "s1"})
	d.Emit(Event{Type: TypeLogout, UserID: 1})

	require.Eventually(t, func() bool { return sink.len() == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, d.Close(time.Second))

	for _, e := range sink.events {
		assert.False(t, e.At.IsZero())
	}
	assert.Zero(t, d.Dropped())
}

func TestDispatcherDropsWhenSaturated(t *testing.T) {
	var logs bytes.Buffer
	sink := &recordingSink{gate: make(chan struct{})}
	d, err := NewDispatcher(sink, 1, WithLogger(log.NewWithWriter(&logs)))
	require.NoError(t, err)

	d.Emit(Event{Type: TypeLogin, UserID: 1})
	require.Eventually(t, func() bool { return d.pool.Running() == 1 }, time.Second, 5*time.Millisecond)

	d.Emit(Event{Type: TypeLogin, UserID: 2})
	assert.Equal(t, uint64(1), d.Dropped())
	assert.Contains(t, logs.String(), "audit event dropped")

	close(sink.gate)
	require.NoError(t, d.Close(time.Second))
	assert.Equal(t, 1, sink.len())
}

func TestDispatcherLogsSinkErrors(t *testing.T) {
	var logs bytes.Buffer
	sink := &recordingSink{err: errors.New("broker down")}
	d, err := NewDispatcher(sink, 1, WithLogger(log.NewWithWriter(&logs)), WithEmitTimeout(time.Second))
	require.NoError(t, err)

	d.Emit(Event{Type: TypeLoginFailed, ClientIP: "10.0.0.1"})
	require.NoError(t, d.Close(time.Second))
	assert.Contains(t, logs.String(), "broker down")

	_, err = NewDispatcher(nil, 1)
	assert.Error(t, err)
}

func TestKafkaSink(t *testing.T) {
	w := &fakeWriter{}
	sink := NewKafkaSink(w)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, sink.Emit(context.Background(), Event{Type: TypeLogin, UserID: 42, SessionID: "sid", At: at}))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, at, msg.Time)

	var got Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, TypeLogin, got.Type)
	assert.Equal(t, "sid", got.SessionID)

	w.err = errors.New("boom")
	assert.Error(t, sink.Emit(context.Background(), Event{Type: TypeLogout}))
}

func TestLogAndMultiSink(t *testing.T) {
	var logs bytes.Buffer
	failing := &recordingSink{err: errors.New("nope")}
	multi := MultiSink{NewLogSink(log.NewWithWriter(&logs)), failing}

	err := multi.Emit(context.Background(), Event{Type: TypeRegister, UserID: 3, At: time.Now()})
	assert.ErrorContains(t, err, "nope")
	assert.Contains(t, logs.String(), `"audit":"register"`)
	assert.Equal(t, 1, failing.len())
}
