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

type WeatherHandler struct {
	relayService *services.RelayService
	logger       zerolog.Logger
}

func NewWeatherHandler(relayService *services.RelayService, logger zerolog.Logger) *WeatherHandler {
	return &WeatherHandler{
		relayService: relayService,
		logger:       logger,
	}
}

func (h *WeatherHandler) HandleMessage(client mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payload := msg.Payload()
	if len(payload) == 0 {
		return
	}

	eventLogger := h.logger.With().Str("event_id", uuid.NewString()).Logger()

	event, err := models.ParseWeatherEvent(payload)
	if err != nil {
		eventLogger.Error().Err(err).
			Str("topic", msg.Topic()).
			Str("payload", string(payload)).
			Msg("Could not parse weather payload")
		return
	}

	if err := h.relayService.ProcessWeather(ctx, event); err != nil {
		eventLogger.Error().Err(err).
			Str("email", event.Email).
			Msg("Error processing weather event")
		return
	}
}
