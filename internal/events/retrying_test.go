package events

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/retry"
)

// flakyConn fails the first n publishes.
type flakyConn struct {
	fakeConn
	failures int
	attempts int
}

func (f *flakyConn) PublishMsg(m *nats.Msg) error {
	f.attempts++
	if f.attempts <= f.failures {
		return nats.ErrConnectionClosed
	}
	return f.fakeConn.PublishMsg(m)
}

func TestRetryingPublisherRecovers(t *testing.T) {
	fc := &flakyConn{failures: 2}
	p := NewRetryingPublisher(&NATSPublisher{conn: fc, subject: "s"},
		retry.NewPolicy(retry.BackoffFixed, time.Millisecond, time.Millisecond, 3))

	require.NoError(t, p.PublishSaved(t.Context(), DocumentSaved{DocumentID: "a", Revision: 1}))
	require.Equal(t, 3, fc.attempts)
	require.Len(t, fc.msgs, 1)

	require.NoError(t, p.Close())
	require.True(t, fc.closed)
}

func TestRetryingPublisherGivesUp(t *testing.T) {
	fc := &flakyConn{failures: 10}
	p := NewRetryingPublisher(&NATSPublisher{conn: fc, subject: "s"},
		retry.NewPolicy(retry.BackoffFixed, time.Millisecond, time.Millisecond, 1))

	err := p.PublishSaved(t.Context(), DocumentSaved{DocumentID: "a"})
	require.True(t, errors.HasCategory(err, errors.CategoryNetwork))
	require.Equal(t, 2, fc.attempts)
	require.Empty(t, fc.msgs)
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) PublishSaved(context.Context, DocumentSaved) error {
	f.calls++
	return errors.InternalError("failed to marshal event").Build()
}
func (f *failingPublisher) Close() error { return nil }

func TestRetryingPublisherSkipsPermanentErrors(t *testing.T) {
	fp := &failingPublisher{}
	p := NewRetryingPublisher(fp, retry.NewPolicy(retry.BackoffFixed, time.Millisecond, time.Millisecond, 5))
	require.Error(t, p.PublishSaved(t.Context(), DocumentSaved{}))
	require.Equal(t, 1, fp.calls)
}
