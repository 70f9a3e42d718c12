package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

func TestDefaultPolicy(t *testing.T) {
	require.Equal(t, Policy{Mode: BackoffLinear, Initial: time.Second, Max: 30 * time.Second, MaxRetries: 2}, DefaultPolicy())
}

func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(BackoffFixed, 5*time.Second, 2*time.Second, 5)
	require.Equal(t, 2*time.Second, p.Initial, "initial is clamped to max")
	require.Equal(t, 2*time.Second, p.Max)
	require.Equal(t, BackoffFixed, p.Mode)
	require.Equal(t, 5, p.MaxRetries)

	require.Equal(t, BackoffLinear, NewPolicy("bogus", 0, 0, -1).Mode)
}

func TestDelayModes(t *testing.T) {
	ms := time.Millisecond
	tests := []struct {
		name string
		p    Policy
		want []time.Duration
	}{
		{"fixed", NewPolicy(BackoffFixed, 100*ms, 500*ms, 3), []time.Duration{100 * ms, 100 * ms, 100 * ms}},
		{"linear", NewPolicy(BackoffLinear, 100*ms, 250*ms, 5), []time.Duration{100 * ms, 200 * ms, 250 * ms, 250 * ms}},
		{"exponential", NewPolicy(BackoffExponential, 50*ms, 160*ms, 5), []time.Duration{50 * ms, 100 * ms, 160 * ms, 160 * ms}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, want := range tt.want {
				require.Equal(t, want, tt.p.Delay(i+1), "attempt %d", i+1)
			}
		})
	}
	require.Zero(t, DefaultPolicy().Delay(0))
	require.Zero(t, DefaultPolicy().Delay(-1))
	require.Equal(t, 30*time.Second, NewPolicy(BackoffExponential, time.Second, 30*time.Second, 99).Delay(64))
}

func TestParseBackoffMode(t *testing.T) {
	m, err := ParseBackoffMode("EXP")
	require.NoError(t, err)
	require.Equal(t, BackoffExponential, m)

	m, err = ParseBackoffMode("")
	require.NoError(t, err)
	require.Equal(t, BackoffLinear, m)

	_, err = ParseBackoffMode("random")
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestDoRetriesRetryableErrors(t *testing.T) {
	p := NewPolicy(BackoffFixed, time.Millisecond, time.Millisecond, 3)
	calls := 0
	err := p.Do(context.Background(), "publish", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.NetworkError("unreachable").Retryable().Build()
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDoStops(t *testing.T) {
	p := NewPolicy(BackoffFixed, time.Millisecond, time.Millisecond, 2)

	calls := 0
	err := p.Do(context.Background(), "publish", func(context.Context) error {
		calls++
		return errors.ValidationError("bad").Build()
	})
	require.Error(t, err)
	require.Equal(t, 1, calls, "non-retryable errors are returned at once")

	calls = 0
	err = p.Do(context.Background(), "publish", func(context.Context) error {
		calls++
		return errors.NetworkError("unreachable").Retryable().Build()
	})
	require.True(t, errors.HasCategory(err, errors.CategoryNetwork))
	require.Equal(t, 3, calls, "first attempt plus two retries")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := NewPolicy(BackoffFixed, time.Hour, time.Hour, 5)
	calls = 0
	err = slow.Do(ctx, "publish", func(context.Context) error {
		calls++
		return errors.NetworkError("unreachable").Retryable().Build()
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
