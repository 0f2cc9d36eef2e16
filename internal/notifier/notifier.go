package notifier

import (
	"context"
	"errors"
	"fmt"
)

// Notifier delivers a short message to the user.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
	Name() string
}

// Multi fans a notification out to every configured notifier.
type Multi []Notifier

func (m Multi) Name() string { return "multi" }

// Notify attempts every notifier and joins the failures.
func (m Multi) Notify(ctx context.Context, title, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, title, message); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Noop drops every notification.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) Notify(_ context.Context, _, _ string) error { return nil }
