// Package engine runs the per-event dispatch state machine:
// received → tenant-resolved → deduplicated → matched → quota-checked →
// sent | suppressed | failed.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmelo/gram-dispatch/internal/dedup"
	"github.com/dmelo/gram-dispatch/internal/event"
	"github.com/dmelo/gram-dispatch/internal/match"
	"github.com/dmelo/gram-dispatch/internal/quota"
	"github.com/dmelo/gram-dispatch/internal/registry"
)

// Sender delivers a reply through the messaging platform. Implementations
// are fallible remote calls; the retry policy is owned by the engine, not
// the sender.
type Sender interface {
	SendMessage(ctx context.Context, tenant *registry.TenantRecord, recipientID, text string) error
	ReplyToComment(ctx context.Context, tenant *registry.TenantRecord, commentID, text string) error
}

// Config holds dispatch engine tuning
type Config struct {
	SendTimeout   time.Duration // per-attempt bound on the outbound call
	MaxAttempts   uint64        // total send attempts, transient failures only
	RetryInterval time.Duration // initial backoff between attempts
}

// Engine orchestrates tenant resolution, deduplication, response matching,
// quota accounting and outbound delivery for inbound events. All mutable
// shared state lives in the deduplicator and the quota tracker, both
// partitioned by tenant; the engine itself only reads tenant snapshots.
type Engine struct {
	reg    registry.Client
	dedup  dedup.Deduplicator
	quota  quota.Tracker
	sender Sender
	cfg    Config

	inflight sync.WaitGroup
}

func New(reg registry.Client, dd dedup.Deduplicator, qt quota.Tracker, sender Sender, cfg Config) *Engine {
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = 500 * time.Millisecond
	}
	return &Engine{reg: reg, dedup: dd, quota: qt, sender: sender, cfg: cfg}
}

// Dispatch runs one event through the state machine and returns its
// terminal outcome. Exactly one outcome is produced per (tenant, event) —
// the deduplicator's atomic check-and-set guarantees redeliveries collapse
// to OutcomeDuplicate. The returned error is non-nil only for
// infrastructure failures before an outcome was reached, or as the send
// error detail accompanying OutcomeFailedSend.
func (e *Engine) Dispatch(ctx context.Context, ev event.Inbound) (Outcome, error) {
	tenant, err := e.reg.Resolve(ctx, ev.RoutingToken)
	if err != nil {
		return "", fmt.Errorf("resolve tenant: %w", err)
	}
	if tenant == nil {
		slog.Warn("dispatch: unknown routing token", "event", ev.ID)
		return OutcomeUnknownTenant, nil
	}
	if !tenant.Active {
		slog.Info("dispatch: tenant inactive", "tenant", tenant.TenantID, "event", ev.ID)
		return OutcomeInactiveTenant, nil
	}

	seen, err := e.dedup.Seen(ctx, tenant.TenantID, ev.ID)
	if err != nil {
		return "", fmt.Errorf("dedup check: %w", err)
	}
	if seen {
		return OutcomeDuplicate, nil
	}

	text, ok := e.response(tenant, ev)
	if !ok {
		return OutcomeNoMatch, nil
	}

	allowed, err := e.quota.TryConsume(ctx, tenant.TenantID, tenant.DailyLimit, tenant.Location())
	if err != nil {
		return "", fmt.Errorf("quota check: %w", err)
	}
	if !allowed {
		slog.Warn("dispatch: daily quota exceeded", "tenant", tenant.TenantID, "limit", tenant.DailyLimit)
		return OutcomeQuotaExceeded, nil
	}

	if err := e.send(ctx, tenant, ev, text); err != nil {
		// The consumed quota slot is not refunded: a failed attempt still
		// counts against the daily budget.
		slog.Error("dispatch: send failed", "tenant", tenant.TenantID, "event", ev.ID, "err", err)
		return OutcomeFailedSend, err
	}
	return OutcomeDelivered, nil
}

// response picks the reply text for an event. Story mentions with a
// configured mention response use it directly; everything else goes through
// the tenant's ordered keyword table.
func (e *Engine) response(tenant *registry.TenantRecord, ev event.Inbound) (string, bool) {
	if ev.Kind == event.KindMention && tenant.MentionResponse != "" {
		return tenant.MentionResponse, true
	}
	return match.Response(ev.Text, tenant.Keywords)
}

// send performs the outbound call with bounded retries. Only transient
// failures (timeout, 5xx, rate limit, connection error) are retried;
// definitive rejections surface immediately.
func (e *Engine) send(ctx context.Context, tenant *registry.TenantRecord, ev event.Inbound, text string) error {
	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.SendTimeout)
		defer cancel()

		var err error
		if ev.Kind == event.KindComment {
			err = e.sender.ReplyToComment(attemptCtx, tenant, ev.ID, text)
		} else {
			err = e.sender.SendMessage(attemptCtx, tenant, ev.SenderID, text)
		}
		if err != nil && !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.RetryInterval
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, e.cfg.MaxAttempts-1), ctx))
}

type transienter interface {
	Transient() bool
}

// isTransient classifies a send failure. Errors that expose a Transient
// method decide for themselves; anything else (connection reset, timeout)
// is assumed transient and worth retrying.
func isTransient(err error) bool {
	var t transienter
	if errors.As(err, &t) {
		return t.Transient()
	}
	return true
}

// DispatchAsync runs Dispatch off the caller's goroutine so the webhook
// delivery can be acknowledged immediately. The dispatch is tracked so
// Drain can wait for it during shutdown.
func (e *Engine) DispatchAsync(ev event.Inbound) {
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), e.asyncTimeout())
		defer cancel()

		start := time.Now()
		outcome, err := e.Dispatch(ctx, ev)
		if err != nil && outcome == "" {
			slog.Error("dispatch: aborted before outcome", "event", ev.ID, "err", err)
			return
		}
		slog.Info("dispatch: done",
			"event", ev.ID,
			"kind", ev.Kind,
			"outcome", outcome,
			"duration", time.Since(start),
		)
	}()
}

// Drain blocks until in-flight dispatches reach a terminal state or ctx
// expires. Events past the dedup step are already marked seen, so an
// abandoned dispatch would silently drop a reply — shutdown waits instead.
func (e *Engine) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// asyncTimeout bounds a background dispatch: every send attempt plus
// backoff slack.
func (e *Engine) asyncTimeout() time.Duration {
	return time.Duration(e.cfg.MaxAttempts)*e.cfg.SendTimeout + 30*time.Second
}
