package handlers_test

import (
	"context"
	"sync"
	"testing"
	"time"
	"umbrella-relay/internal/config"
	"umbrella-relay/internal/models"
	"umbrella-relay/internal/mq/handlers"
	"umbrella-relay/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMessage implements the paho Message interface for handler tests.
type testMessage struct {
	topic   string
	payload []byte
}

func (m *testMessage) Duplicate() bool   { return false }
func (m *testMessage) Qos() byte         { return 1 }
func (m *testMessage) Retained() bool    { return false }
func (m *testMessage) Topic() string     { return m.topic }
func (m *testMessage) MessageID() uint16 { return 0 }
func (m *testMessage) Payload() []byte   { return m.payload }
func (m *testMessage) Ack()              {}

type stubDirectory struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

func (d *stubDirectory) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	account, ok := d.accounts[email]
	if !ok {
		return nil, services.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (d *stubDirectory) UpsertCode(context.Context, string, string, time.Time) error { return nil }

func (d *stubDirectory) CompleteRegistration(context.Context, string, string, string) error {
	return nil
}

func (d *stubDirectory) UpdateEmergencyEmail(context.Context, string, string) error { return nil }

type stubNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *stubNotifier) Send(recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, recipient)
	return nil
}

type stubBroadcaster struct {
	mu        sync.Mutex
	positions []models.Position
	statuses  []string
}

func (b *stubBroadcaster) BroadcastPosition(position models.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions = append(b.positions, position)
}

func (b *stubBroadcaster) BroadcastStatus(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = append(b.statuses, text)
}

type stubTelemetry struct{}

func (stubTelemetry) WritePosition(models.Position)    {}
func (stubTelemetry) WriteWeather(models.WeatherEvent) {}

func newTestStack() (*services.RelayService, *stubNotifier, *stubBroadcaster) {
	directory := &stubDirectory{accounts: map[string]*models.Account{
		"user@example.com": {Email: "user@example.com", EmergencyEmail: "x@y.com"},
	}}
	notifier := &stubNotifier{}
	broadcaster := &stubBroadcaster{}
	alerts := config.AlertsConfig{RainProbThreshold: 50, UVIndexThreshold: 7}

	relay := services.NewRelayService(directory, notifier, broadcaster, stubTelemetry{}, alerts, zerolog.Nop())
	return relay, notifier, broadcaster
}

func TestSosHandler_MalformedThenValid(t *testing.T) {
	relay, notifier, _ := newTestStack()
	handler := handlers.NewSosHandler(relay, zerolog.Nop())

	handler.HandleMessage(nil, &testMessage{topic: "umbrella/sos", payload: []byte(`{"email": broken`)})
	assert.Empty(t, notifier.sent)

	handler.HandleMessage(nil, &testMessage{topic: "umbrella/sos", payload: []byte(`{"email":"user@example.com","lat":1,"lon":2}`)})
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "x@y.com", notifier.sent[0])
}

func TestWeatherHandler_MalformedThenValid(t *testing.T) {
	relay, notifier, _ := newTestStack()
	handler := handlers.NewWeatherHandler(relay, zerolog.Nop())

	handler.HandleMessage(nil, &testMessage{topic: "umbrella/weather", payload: []byte(`not json at all`)})
	assert.Empty(t, notifier.sent)

	handler.HandleMessage(nil, &testMessage{topic: "umbrella/weather", payload: []byte(`{"email":"user@example.com","rain_prob":90,"uv_index":1}`)})
	require.Len(t, notifier.sent, 1)
}

func TestWeatherHandler_UnknownAccountDoesNotPanic(t *testing.T) {
	relay, notifier, _ := newTestStack()
	handler := handlers.NewWeatherHandler(relay, zerolog.Nop())

	handler.HandleMessage(nil, &testMessage{topic: "umbrella/weather", payload: []byte(`{"email":"nobody@example.com","rain_prob":90}`)})
	assert.Empty(t, notifier.sent)

	// the loop keeps going afterwards
	handler.HandleMessage(nil, &testMessage{topic: "umbrella/weather", payload: []byte(`{"email":"user@example.com","rain_prob":90}`)})
	require.Len(t, notifier.sent, 1)
}

func TestGpsHandler_ParseFailureSilentlyIgnored(t *testing.T) {
	relay, _, broadcaster := newTestStack()
	handler := handlers.NewGpsHandler(relay, zerolog.Nop())

	handler.HandleMessage(nil, &testMessage{topic: "umbrella/gps", payload: []byte("garbage")})
	assert.Empty(t, broadcaster.positions)

	handler.HandleMessage(nil, &testMessage{topic: "umbrella/gps", payload: []byte("48.1,11.5")})
	require.Len(t, broadcaster.positions, 1)
	assert.Equal(t, models.Position{Latitude: 48.1, Longitude: 11.5}, broadcaster.positions[0])
}

func TestStatusHandler_ForwardsOpaqueText(t *testing.T) {
	relay, _, broadcaster := newTestStack()
	handler := handlers.NewStatusHandler(relay, zerolog.Nop())

	handler.HandleMessage(nil, &testMessage{topic: "umbrella/status", payload: []byte("battery low")})
	require.Len(t, broadcaster.statuses, 1)
	assert.Equal(t, "battery low", broadcaster.statuses[0])

	// empty payloads are dropped
	handler.HandleMessage(nil, &testMessage{topic: "umbrella/status", payload: nil})
	assert.Len(t, broadcaster.statuses, 1)
}
