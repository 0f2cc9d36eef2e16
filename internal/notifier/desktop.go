package notifier

import (
	"context"

	"github.com/gen2brain/beeep"
)

// DesktopNotifier shows a native desktop notification.
type DesktopNotifier struct {
	send func(title, message, appIcon string) error
}

// NewDesktopNotifier creates a notifier backed by the platform notification service.
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{send: beeep.Notify}
}

func (d *DesktopNotifier) Name() string { return "desktop" }

func (d *DesktopNotifier) Notify(_ context.Context, title, message string) error {
	return d.send(title, message, "")
}
