package gate

import (
	"context"
	"time"
)

// ActivityEventType enumerates recorded sign in activity.
type ActivityEventType string

const (
	ActivityEventSignIn        ActivityEventType = "gate.sign_in.success"
	ActivityEventSignInFailure ActivityEventType = "gate.sign_in.failure"
	ActivityEventTokenHandoff  ActivityEventType = "gate.token.handoff"
	ActivityEventSignOut       ActivityEventType = "gate.sign_out"

	ActivityEventPasswordResetRequest ActivityEventType = "gate.password_reset.requested"
	ActivityEventPasswordReset        ActivityEventType = "gate.password_reset.completed"
	ActivityEventInvitationAccepted   ActivityEventType = "gate.invitation.accepted"
)

// ActivityEvent captures audit-friendly information about a gate action.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     string
	Role       Role
	Remember   bool
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
