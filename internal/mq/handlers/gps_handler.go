package handlers

import (
	"context"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"time"
	"umbrella-relay/internal/models"
	"umbrella-relay/internal/services"
)

type GpsHandler struct {
	relayService *services.RelayService
	logger       zerolog.Logger
}

func NewGpsHandler(relayService *services.RelayService, logger zerolog.Logger) *GpsHandler {
	return &GpsHandler{
		relayService: relayService,
		logger:       logger,
	}
}

func (h *GpsHandler) HandleMessage(client mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payload := msg.Payload()
	if len(payload) == 0 {
		return
	}

	position, err := models.ParsePosition(payload)
	if err != nil {
		h.logger.Debug().
			Str("topic", msg.Topic()).
			Str("payload", string(payload)).
			Msg("Ignoring malformed position payload")
		return
	}

	h.relayService.ProcessPosition(ctx, position)
}
