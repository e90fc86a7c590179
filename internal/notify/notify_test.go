package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject  string
	data     []byte
	flushErr error
	closed   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error { return f.flushErr }
func (f *fakeConn) Close()                                 { f.closed = true }

var _ Publisher = (*NATSPublisher)(nil)
var _ Publisher = Noop{}

func TestPublish_EncodesEvent(t *testing.T) {
	fc := &fakeConn{}
	p := &NATSPublisher{conn: fc, subject: "sitebuilder.builds"}

	err := p.Publish(context.Background(), Event{
		BuildID:    "b1",
		Outcome:    "success",
		DurationMS: 42,
		Pages:      3,
		Changed:    []string{"index.md"},
	})
	require.NoError(t, err)
	require.Equal(t, "sitebuilder.builds", fc.subject)

	var got map[string]any
	require.NoError(t, json.Unmarshal(fc.data, &got))
	require.Equal(t, "b1", got["build_id"])
	require.Equal(t, "success", got["outcome"])
	require.InDelta(t, 3, got["pages"], 0)
	require.Equal(t, []any{"index.md"}, got["changed"])
	require.NotContains(t, got, "error")
	require.NotEmpty(t, got["timestamp"])

	p.Close()
	require.True(t, fc.closed)
}

func TestPublish_KeepsExplicitTimestamp(t *testing.T) {
	fc := &fakeConn{}
	p := &NATSPublisher{conn: fc, subject: "s"}
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, p.Publish(context.Background(), Event{BuildID: "b", Timestamp: ts}))
	var got Event
	require.NoError(t, json.Unmarshal(fc.data, &got))
	require.True(t, ts.Equal(got.Timestamp))
}

func TestPublish_FlushError(t *testing.T) {
	p := &NATSPublisher{conn: &fakeConn{flushErr: errors.New("timeout")}, subject: "s"}
	require.ErrorContains(t, p.Publish(context.Background(), Event{}), "flush")
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect("nats://127.0.0.1:1", "s")
	require.Error(t, err)
}
