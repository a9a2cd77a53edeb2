package handlers

import (
	"context"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"time"
	"umbrella-relay/internal/services"
)

type StatusHandler struct {
	relayService *services.RelayService
	logger       zerolog.Logger
}

func NewStatusHandler(relayService *services.RelayService, logger zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		relayService: relayService,
		logger:       logger,
	}
}

func (h *StatusHandler) HandleMessage(client mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payload := msg.Payload()
	if len(payload) == 0 {
		return
	}

	h.logger.Debug().
		Str("topic", msg.Topic()).
		Str("payload", string(payload)).
		Msg("Received status update")

	h.relayService.ProcessStatus(ctx, string(payload))
}
