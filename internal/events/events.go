// Package events publishes document lifecycle events to NATS.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/logfields"
	"git.home.luguber.info/inful/draftmd/internal/version"
)

// DocumentSaved is published after a new document revision is stored.
type DocumentSaved struct {
	DocumentID  string    `json:"documentId"`
	Revision    int       `json:"revision"`
	Fingerprint string    `json:"fingerprint"`
	Blocks      int       `json:"blocks"`
	Links       int       `json:"links"`
	Mentions    []int64   `json:"mentions,omitempty"`
	SavedAt     time.Time `json:"savedAt"`
}

// Publisher publishes document events.
type Publisher interface {
	PublishSaved(ctx context.Context, ev DocumentSaved) error
	Close() error
}

// NoopPublisher drops every event (default when events are disabled).
type NoopPublisher struct{}

func (NoopPublisher) PublishSaved(context.Context, DocumentSaved) error { return nil }
func (NoopPublisher) Close() error                                      { return nil }

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes events on a single subject.
type NATSPublisher struct {
	conn    conn
	subject string
}

// NewNATSPublisher connects to url and publishes on subject.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name(version.UserAgent()),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", url).
			Build()
	}
	slog.Info("NATS publisher connected", "url", url, logfields.Subject(subject))
	return &NATSPublisher{conn: nc, subject: subject}, nil
}

// PublishSaved publishes ev and waits for the server to acknowledge the
// flush. The Nats-Msg-Id header lets JetStream streams drop duplicates.
func (p *NATSPublisher) PublishSaved(ctx context.Context, ev DocumentSaved) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal event").Build()
	}
	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, ev.DocumentID+":"+strconv.Itoa(ev.Revision))
	msg.Header.Set("Draftmd-Fingerprint", ev.Fingerprint)

	if err := p.conn.PublishMsg(msg); err != nil {
		return publishError(err, p.subject)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return publishError(err, p.subject)
	}
	slog.Debug("Published document event",
		logfields.Subject(p.subject),
		logfields.DocumentID(ev.DocumentID),
		slog.Int("revision", ev.Revision))
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

func publishError(err error, subject string) error {
	return errors.WrapError(err, errors.CategoryNetwork, "failed to publish event").
		Retryable().
		WithContext("subject", subject).
		Build()
}
