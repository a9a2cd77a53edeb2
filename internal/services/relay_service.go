package services

import (
	"context"
	"fmt"
	"github.com/rs/zerolog"
	"strings"
	"umbrella-relay/internal/config"
	"umbrella-relay/internal/models"
)

// RelayService turns parsed device events into resolved, thresholded
// notifications. Each Process method handles exactly one event; failures are
// reported to the calling topic handler and never affect other events.
type RelayService struct {
	directory   Directory
	notifier    Notifier
	broadcaster Broadcaster
	telemetry   TelemetryWriter
	alerts      config.AlertsConfig
	logger      zerolog.Logger
}

func NewRelayService(
	directory Directory,
	notifier Notifier,
	broadcaster Broadcaster,
	telemetry TelemetryWriter,
	alerts config.AlertsConfig,
	logger zerolog.Logger,
) *RelayService {
	return &RelayService{
		directory:   directory,
		notifier:    notifier,
		broadcaster: broadcaster,
		telemetry:   telemetry,
		alerts:      alerts,
		logger:      logger,
	}
}

// ProcessPosition forwards a position update to connected observers and
// records it in the telemetry history.
func (s *RelayService) ProcessPosition(ctx context.Context, position models.Position) {
	s.broadcaster.BroadcastPosition(position)
	s.telemetry.WritePosition(position)
}

// ProcessStatus forwards a status line to connected observers as-is.
func (s *RelayService) ProcessStatus(ctx context.Context, text string) {
	s.broadcaster.BroadcastStatus(text)
}

// ProcessSos escalates an emergency to the account's emergency contact. An
// account without one produces no notification at all.
func (s *RelayService) ProcessSos(ctx context.Context, event models.SosEvent) error {
	account, err := s.directory.FindByEmail(ctx, event.Email)
	if err != nil {
		return fmt.Errorf("could not resolve account %s: %w", event.Email, err)
	}

	if account.EmergencyEmail == "" {
		s.logger.Warn().
			Str("email", event.Email).
			Msg("SOS event for account without emergency contact, nothing to dispatch")
		return nil
	}

	body := fmt.Sprintf("SOS triggered by %s.\nLocation: %s", event.Email, event.Position().MapsLink())
	if err := s.notifier.Send(account.EmergencyEmail, "Smart Umbrella SOS", body); err != nil {
		return fmt.Errorf("failed to dispatch SOS notification: %w", err)
	}

	s.logger.Info().
		Str("email", event.Email).
		Str("recipient", account.EmergencyEmail).
		Msg("SOS notification dispatched")

	return nil
}

// ProcessWeather evaluates the alert thresholds and dispatches at most one
// notification per event: the rain line first, then the UV line, one send.
func (s *RelayService) ProcessWeather(ctx context.Context, event models.WeatherEvent) error {
	s.telemetry.WriteWeather(event)

	account, err := s.directory.FindByEmail(ctx, event.Email)
	if err != nil {
		return fmt.Errorf("could not resolve account %s: %w", event.Email, err)
	}

	var alerts []string
	if event.RainProbability > s.alerts.RainProbThreshold {
		alerts = append(alerts, fmt.Sprintf("High rain probability: %v%%", event.RainProbability))
	}
	if event.UVIndex > s.alerts.UVIndexThreshold {
		alerts = append(alerts, fmt.Sprintf("High UV index: %v", event.UVIndex))
	}

	if len(alerts) == 0 {
		return nil
	}

	recipient := account.AlertRecipient()
	body := fmt.Sprintf("%s\nLocation: %s", strings.Join(alerts, "\n"), event.Position().MapsLink())

	if err := s.notifier.Send(recipient, "Smart Umbrella Weather Alert", body); err != nil {
		return fmt.Errorf("failed to dispatch weather notification: %w", err)
	}

	s.logger.Info().
		Str("email", event.Email).
		Str("recipient", recipient).
		Int("alert_count", len(alerts)).
		Msg("Weather notification dispatched")

	return nil
}
