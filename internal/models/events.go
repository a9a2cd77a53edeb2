package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Position is the umbrella/gps payload: "<lat>,<lon>" in decimal degrees.
type Position struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func ParsePosition(payload []byte) (Position, error) {
	parts := strings.Split(strings.TrimSpace(string(payload)), ",")
	if len(parts) != 2 {
		return Position{}, fmt.Errorf("expected \"lat,lon\", got %q", string(payload))
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Position{}, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Position{}, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}

	return Position{Latitude: lat, Longitude: lon}, nil
}

func (p Position) Encode() []byte {
	return []byte(fmt.Sprintf("%s,%s",
		strconv.FormatFloat(p.Latitude, 'f', -1, 64),
		strconv.FormatFloat(p.Longitude, 'f', -1, 64)))
}

func (p Position) MapsLink() string {
	return fmt.Sprintf("https://maps.google.com/?q=%s,%s",
		strconv.FormatFloat(p.Latitude, 'f', -1, 64),
		strconv.FormatFloat(p.Longitude, 'f', -1, 64))
}

// SosEvent is the umbrella/sos payload.
type SosEvent struct {
	Email     string  `json:"email"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func ParseSosEvent(payload []byte) (SosEvent, error) {
	var event SosEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return SosEvent{}, fmt.Errorf("invalid sos payload: %w", err)
	}

	if event.Email == "" {
		return SosEvent{}, fmt.Errorf("sos payload has no email")
	}

	return event, nil
}

func (e SosEvent) Position() Position {
	return Position{Latitude: e.Latitude, Longitude: e.Longitude}
}

// WeatherEvent is the umbrella/weather payload.
type WeatherEvent struct {
	Email           string  `json:"email"`
	Latitude        float64 `json:"lat"`
	Longitude       float64 `json:"lon"`
	RainProbability float64 `json:"rain_prob"`
	UVIndex         float64 `json:"uv_index"`
}

func ParseWeatherEvent(payload []byte) (WeatherEvent, error) {
	var event WeatherEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return WeatherEvent{}, fmt.Errorf("invalid weather payload: %w", err)
	}

	if event.Email == "" {
		return WeatherEvent{}, fmt.Errorf("weather payload has no email")
	}

	return event, nil
}

func (e WeatherEvent) Position() Position {
	return Position{Latitude: e.Latitude, Longitude: e.Longitude}
}

// ContactAnnouncement is the retained umbrella/emails payload published
// after registration or an emergency contact update.
type ContactAnnouncement struct {
	UserEmail      string `json:"userEmail"`
	EmergencyEmail string `json:"emergencyEmail"`
}
