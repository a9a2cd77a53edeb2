package influx

import (
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/rs/zerolog"
	"time"
	"umbrella-relay/internal/models"
)

// TelemetryWriter keeps a time-series history of device telemetry. Writes go
// through the async write API and never block an event handler.
type TelemetryWriter struct {
	writeAPI api.WriteAPI
	logger   zerolog.Logger
}

func NewTelemetryWriter(writeAPI api.WriteAPI, logger zerolog.Logger) *TelemetryWriter {
	return &TelemetryWriter{
		writeAPI: writeAPI,
		logger:   logger,
	}
}

func (w *TelemetryWriter) WritePosition(position models.Position) {
	fields := map[string]interface{}{
		"latitude":  position.Latitude,
		"longitude": position.Longitude,
	}

	point := influxdb2.NewPoint(
		"position",
		nil,
		fields,
		time.Now(),
	)

	w.writeAPI.WritePoint(point)

	w.logger.Debug().
		Float64("latitude", position.Latitude).
		Float64("longitude", position.Longitude).
		Msg("Added position to influxDB")
}

func (w *TelemetryWriter) WriteWeather(event models.WeatherEvent) {
	tags := map[string]string{
		"email": event.Email,
	}

	fields := map[string]interface{}{
		"latitude":         event.Latitude,
		"longitude":        event.Longitude,
		"rain_probability": event.RainProbability,
		"uv_index":         event.UVIndex,
	}

	point := influxdb2.NewPoint(
		"weather",
		tags,
		fields,
		time.Now(),
	)

	w.writeAPI.WritePoint(point)

	w.logger.Debug().
		Str("email", event.Email).
		Float64("rain_probability", event.RainProbability).
		Float64("uv_index", event.UVIndex).
		Msg("Added weather reading to influxDB")
}
