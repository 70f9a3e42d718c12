package events

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/markdown"
	"git.home.luguber.info/inful/draftmd/internal/store"
)

type fakeConn struct {
	msgs     []*nats.Msg
	pubErr   error
	flushErr error
	closed   bool
}

func (f *fakeConn) PublishMsg(m *nats.Msg) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error { return f.flushErr }
func (f *fakeConn) Close()                                 { f.closed = true }

func TestPublishSaved(t *testing.T) {
	fc := &fakeConn{}
	p := &NATSPublisher{conn: fc, subject: "draftmd.documents.saved"}

	ev := DocumentSaved{
		DocumentID:  "notes",
		Revision:    3,
		Fingerprint: "abc",
		Blocks:      2,
		Links:       1,
		Mentions:    []int64{42},
		SavedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, p.PublishSaved(t.Context(), ev))
	require.Len(t, fc.msgs, 1)

	msg := fc.msgs[0]
	require.Equal(t, "draftmd.documents.saved", msg.Subject)
	require.Equal(t, "notes:3", msg.Header.Get(nats.MsgIdHdr))
	require.Equal(t, "abc", msg.Header.Get("Draftmd-Fingerprint"))

	var got DocumentSaved
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	require.Equal(t, ev, got)

	require.NoError(t, p.Close())
	require.True(t, fc.closed)
}

func TestPublishErrorsAreNetwork(t *testing.T) {
	for _, fc := range []*fakeConn{
		{pubErr: nats.ErrConnectionClosed},
		{flushErr: fmt.Errorf("flush timeout")},
	} {
		p := &NATSPublisher{conn: fc, subject: "s"}
		err := p.PublishSaved(t.Context(), DocumentSaved{DocumentID: "a"})
		require.True(t, errors.HasCategory(err, errors.CategoryNetwork))
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	require.NoError(t, p.PublishSaved(t.Context(), DocumentSaved{}))
	require.NoError(t, p.Close())
}

func TestConnectFailure(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "s")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNetwork))
}

func TestNewDocumentSaved(t *testing.T) {
	doc := markdown.Import("[Bob](_user_:7) and [Alice](_user_:42) see [docs](https://example.com)\n\n[Bob again](_user_:7)")
	saved := store.Document{ID: "d", Revision: 2, Fingerprint: "fp", UpdatedAt: time.Unix(10, 0).UTC()}

	ev := NewDocumentSaved(saved, doc)
	require.Equal(t, "d", ev.DocumentID)
	require.Equal(t, 2, ev.Revision)
	require.Equal(t, "fp", ev.Fingerprint)
	require.Equal(t, 2, ev.Blocks)
	require.Equal(t, 1, ev.Links)
	require.Equal(t, []int64{7, 42}, ev.Mentions)
	require.Equal(t, saved.UpdatedAt, ev.SavedAt)
}
