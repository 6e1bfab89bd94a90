package domain

import "time"

// EventType names an auditable occurrence in the admin and raffle surfaces.
type EventType string

const (
	EventLoginSucceeded   EventType = "auth.login_succeeded"
	EventLoginFailed      EventType = "auth.login_failed"
	EventPasswordChanged  EventType = "auth.password_changed"
	EventSuperadminBoot   EventType = "admin.superadmin_bootstrapped"
	EventAdminCreated     EventType = "admin.created"
	EventAdminDeleted     EventType = "admin.deleted"
	EventRaffleDrawn      EventType = "raffle.drawn"
	EventSettingsUpdated  EventType = "raffle.settings_updated"
	EventParticipantAdded EventType = "participant.submitted"
)

// Event is a best-effort telemetry record. ActorID is empty for anonymous actions.
type Event struct {
	Type       EventType
	ActorID    string
	ActorRole  string
	Source     string
	Attributes map[string]string
	OccurredAt time.Time
}
