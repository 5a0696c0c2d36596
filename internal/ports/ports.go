package ports

import (
	"context"
	"time"

	"BrainGuard/internal/domain"
)

// PageSource observes a page and returns its extracted snapshot.
// FinalURL resolves redirects without extracting content.
type PageSource interface {
	Observe(ctx context.Context, target string, behavioral domain.Behavioral) (domain.Page, error)
	FinalURL(ctx context.Context, target string) (string, error)
}

// SessionRepository persists the local session log.
type SessionRepository interface {
	Append(ctx context.Context, record domain.SessionRecord) error
	Since(ctx context.Context, since time.Time) ([]domain.SessionRecord, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Notifier delivers one formatted message to Telegram or other channels.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// AlertDispatcher accepts outbound alerts without blocking the caller.
// Delivery is best-effort: no retry, failures are only logged.
type AlertDispatcher interface {
	Dispatch(message string) bool
}

// Scheduler controls when periodic jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
