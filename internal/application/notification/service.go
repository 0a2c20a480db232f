package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/contoso-notify/internal/domain"
	"github.com/contoso-notify/internal/pkg/validate"
)

// MaxBatch is the hard ceiling on notifications returned by one Drain.
const MaxBatch = 10

// sendTimeout bounds a single enqueue so a slow transport cannot hold the
// producing request.
const sendTimeout = 3 * time.Second

// Transport is the FIFO hand-off between producers and the consumer.
// TryDequeue returns (nil, nil) when nothing is available.
type Transport interface {
	Enqueue(ctx context.Context, n *domain.Notification) error
	TryDequeue(ctx context.Context) (*domain.Notification, error)
}

type Service interface {
	// Send never fails the caller. It reports whether the notification was
	// queued; the reason for a false result is only logged.
	Send(ctx context.Context, change domain.EntityChange) bool
	// Receive pops one notification. Transport errors read as empty.
	Receive(ctx context.Context) (*domain.Notification, bool)
	// Drain collects up to limit notifications, capped at MaxBatch.
	Drain(ctx context.Context, limit int) ([]domain.Notification, error)
	// MarkAsRead is an extension point with no store behind it yet.
	MarkAsRead(ctx context.Context, id int64)
}

type service struct {
	transport Transport
	seq       atomic.Int64
	now       func() time.Time
}

func NewService(transport Transport) Service {
	return &service{transport: transport, now: time.Now}
}

func (s *service) Send(ctx context.Context, change domain.EntityChange) (queued bool) {
	log := slog.With("entity_type", change.EntityType, "entity_id", change.EntityID, "operation", change.Operation)

	defer func() {
		if r := recover(); r != nil {
			log.Error("notification send panicked", "panic", r)
			queued = false
		}
	}()

	if err := validate.Struct(change); err != nil {
		log.Warn("notification dropped: invalid change", "err", err)
		return false
	}

	n := s.build(change)

	// The producer's request may finish before the enqueue does.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	if err := s.transport.Enqueue(ctx, n); err != nil {
		log.Error("failed to send notification", "err", err)
		return false
	}
	log.Debug("notification queued", "id", n.ID)
	return true
}

func (s *service) build(change domain.EntityChange) *domain.Notification {
	actor := change.Actor
	if actor == "" {
		actor = domain.DefaultActor
	}
	return &domain.Notification{
		ID:         s.seq.Add(1),
		EntityType: change.EntityType,
		EntityID:   change.EntityID,
		Operation:  change.Operation,
		Message:    Message(change.EntityType, change.EntityID, change.Operation, change.DisplayName),
		CreatedAt:  s.now(),
		CreatedBy:  actor,
	}
}

func (s *service) Receive(ctx context.Context) (n *domain.Notification, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("notification receive panicked", "panic", r)
			n, ok = nil, false
		}
	}()

	n, err := s.transport.TryDequeue(ctx)
	if err != nil {
		slog.Warn("failed to receive notification", "err", err)
		return nil, false
	}
	if n == nil {
		return nil, false
	}
	return n, true
}

func (s *service) Drain(ctx context.Context, limit int) ([]domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("drain notifications: %w", err)
	}
	if limit <= 0 || limit > MaxBatch {
		limit = MaxBatch
	}

	out := make([]domain.Notification, 0, limit)
	for len(out) < limit {
		n, ok := s.Receive(ctx)
		if !ok {
			break
		}
		out = append(out, *n)
	}
	return out, nil
}

func (s *service) MarkAsRead(_ context.Context, id int64) {
	slog.Debug("mark notification as read", "id", id)
}
