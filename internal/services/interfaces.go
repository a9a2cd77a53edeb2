package services

import (
	"context"
	"time"
	"umbrella-relay/internal/models"
)

// Directory resolves and updates account records. Backed by the postgres
// account repository in production, by in-memory fakes in tests.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	UpsertCode(ctx context.Context, email, code string, expiresAt time.Time) error
	CompleteRegistration(ctx context.Context, email, passwordHash, emergencyEmail string) error
	UpdateEmergencyEmail(ctx context.Context, email, emergencyEmail string) error
}

// Notifier delivers a message to a recipient address. Fire-and-forget: a
// failure is observable only through the returned error.
type Notifier interface {
	Send(recipient, subject, body string) error
}

// Publisher pushes outbound messages onto the bus.
type Publisher interface {
	Publish(topic string, payload []byte) error
	PublishRetainedJson(topic string, data interface{}) error
}

// Broadcaster fans telemetry out to connected UI observers.
type Broadcaster interface {
	BroadcastPosition(position models.Position)
	BroadcastStatus(text string)
}

// TelemetryWriter records telemetry history.
type TelemetryWriter interface {
	WritePosition(position models.Position)
	WriteWeather(event models.WeatherEvent)
}
