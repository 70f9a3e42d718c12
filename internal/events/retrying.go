package events

import (
	"context"

	"git.home.luguber.info/inful/draftmd/internal/retry"
)

// RetryingPublisher retries retryable publish failures of the wrapped
// publisher according to a backoff policy.
type RetryingPublisher struct {
	next   Publisher
	policy retry.Policy
}

// NewRetryingPublisher wraps next with policy.
func NewRetryingPublisher(next Publisher, policy retry.Policy) *RetryingPublisher {
	return &RetryingPublisher{next: next, policy: policy}
}

func (p *RetryingPublisher) PublishSaved(ctx context.Context, ev DocumentSaved) error {
	return p.policy.Do(ctx, "publish_saved", func(ctx context.Context) error {
		return p.next.PublishSaved(ctx, ev)
	})
}

func (p *RetryingPublisher) Close() error { return p.next.Close() }
