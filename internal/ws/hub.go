package ws

import (
	"context"
	"encoding/json"
	"github.com/rs/zerolog"
	"umbrella-relay/internal/models"
)

// Hub fans telemetry frames out to connected UI observers. A slow or gone
// client is dropped so it can never hold up the relay.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     zerolog.Logger
}

type frame struct {
	Type      string  `json:"type"`
	Latitude  float64 `json:"lat,omitempty"`
	Longitude float64 `json:"lon,omitempty"`
	Text      string  `json:"text,omitempty"`
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug().
				Str("client_id", client.id).
				Int("observers", len(h.clients)).
				Msg("Observer connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug().
					Str("client_id", client.id).
					Int("observers", len(h.clients)).
					Msg("Observer disconnected")
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
					h.logger.Warn().
						Str("client_id", client.id).
						Msg("Dropping slow observer")
				}
			}

		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

func (h *Hub) BroadcastPosition(position models.Position) {
	h.send(frame{
		Type:      "gps",
		Latitude:  position.Latitude,
		Longitude: position.Longitude,
	})
}

func (h *Hub) BroadcastStatus(text string) {
	h.send(frame{
		Type: "status",
		Text: text,
	})
}

func (h *Hub) send(f frame) {
	payload, err := json.Marshal(f)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal observer frame")
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn().Msg("Observer broadcast buffer full, frame dropped")
	}
}
