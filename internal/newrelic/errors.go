package newrelic

import (
	"fmt"
	"strings"

	"relicnotify/internal/services"
	"relicnotify/internal/target"
)

// NotificationError describes a failed send. It matches services.ErrProtocol.
type NotificationError struct {
	Protocol   target.Protocol
	Identifier string
	// StatusCode is zero when no response was received.
	StatusCode int
	Detail     string
	Err        error
}

func (e *NotificationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "new relic %s notification for %s failed", e.Protocol, e.Identifier)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": http %d", e.StatusCode)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *NotificationError) Unwrap() error { return e.Err }

// Is reports protocol failures as services.ErrProtocol.
func (e *NotificationError) Is(target error) bool {
	return target == services.ErrProtocol
}
