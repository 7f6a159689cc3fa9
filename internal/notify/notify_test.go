package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagesmith/internal/build"
)

type fakeConn struct {
	subject string
	data    []byte
	flushed bool
	closed  bool
	err     error
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.subject, f.data = subj, data
	return f.err
}

func (f *fakeConn) FlushWithContext(context.Context) error {
	f.flushed = true
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestPublishesReport(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "", nil)

	r := &build.Report{
		ID: "b1", Kind: build.KindFull, Env: "prod", Outcome: build.OutcomeSuccess,
		Pages: 2, Start: time.Unix(0, 0), End: time.Unix(0, int64(250*time.Millisecond)),
	}
	require.NoError(t, p.OnBuildComplete(context.Background(), r))
	require.Equal(t, DefaultSubject, conn.subject)
	require.True(t, conn.flushed)

	var e Event
	require.NoError(t, json.Unmarshal(conn.data, &e))
	require.Equal(t, "b1", e.BuildID)
	require.Equal(t, "full", e.Kind)
	require.Equal(t, "success", e.Outcome)
	require.Equal(t, int64(250), e.DurationMS)
	require.Empty(t, e.Error)

	p.Close()
	require.True(t, conn.closed)
}

func TestPublishErrorIsReturned(t *testing.T) {
	conn := &fakeConn{err: errors.New("no servers")}
	p := NewPublisher(conn, "custom.subject", nil)

	err := p.Publish(context.Background(), Event{BuildID: "x"})
	require.ErrorContains(t, err, "no servers")
	require.Equal(t, "custom.subject", conn.subject)
	require.False(t, conn.flushed)
}
