package handlers

import (
	"context"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"time"
	"umbrella-relay/internal/models"
	"umbrella-relay/internal/services"
)

type SosHandler struct {
	relayService *services.RelayService
	logger       zerolog.Logger
}

func NewSosHandler(relayService *services.RelayService, logger zerolog.Logger) *SosHandler {
	return &SosHandler{
		relayService: relayService,
		logger:       logger,
	}
}

func (h *SosHandler) HandleMessage(client mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payload := msg.Payload()
	if len(payload) == 0 {
		return
	}

	eventLogger := h.logger.With().Str("event_id", uuid.NewString()).Logger()

	event, err := models.ParseSosEvent(payload)
	if err != nil {
		eventLogger.Error().Err(err).
			Str("topic", msg.Topic()).
			Str("payload", string(payload)).
			Msg("Could not parse SOS payload")
		return
	}

	if err := h.relayService.ProcessSos(ctx, event); err != nil {
		eventLogger.Error().Err(err).
			Str("email", event.Email).
			Msg("Error processing SOS event")
		return
	}
}
