// Package notify is the hook mutation handlers call after they commit.
// Nothing here can change the outcome of the commit it follows.
package notify

import (
	"context"

	"github.com/contoso-notify/internal/domain"
)

// Sender is the producer side of the notification service.
type Sender interface {
	Send(ctx context.Context, change domain.EntityChange) bool
}

// AfterCommit runs commit and, only if it succeeded, reports change.
// The commit error is returned unchanged.
func AfterCommit(ctx context.Context, s Sender, change domain.EntityChange, commit func(context.Context) error) error {
	if err := commit(ctx); err != nil {
		return err
	}
	Committed(ctx, s, nil, change)
	return nil
}

// Committed reports change when commitErr is nil and returns whether a
// notification was queued. A nil Sender is allowed and queues nothing.
func Committed(ctx context.Context, s Sender, commitErr error, change domain.EntityChange) bool {
	if commitErr != nil || s == nil {
		return false
	}
	return s.Send(ctx, change)
}
