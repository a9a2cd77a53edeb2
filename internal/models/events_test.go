package models_test

import (
	"testing"
	"umbrella-relay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    models.Position
		wantErr bool
	}{
		{name: "plain", payload: "48.137,11.575", want: models.Position{Latitude: 48.137, Longitude: 11.575}},
		{name: "negative coordinates", payload: "-33.86,151.2", want: models.Position{Latitude: -33.86, Longitude: 151.2}},
		{name: "surrounding whitespace", payload: " 1.5 , 2.5 ", want: models.Position{Latitude: 1.5, Longitude: 2.5}},
		{name: "missing separator", payload: "48.137", wantErr: true},
		{name: "too many fields", payload: "1,2,3", wantErr: true},
		{name: "non-numeric", payload: "abc,def", wantErr: true},
		{name: "empty", payload: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := models.ParsePosition([]byte(tt.payload))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPositionMapsLink(t *testing.T) {
	position := models.Position{Latitude: 52.52, Longitude: 13.405}
	assert.Equal(t, "https://maps.google.com/?q=52.52,13.405", position.MapsLink())
}

func TestPositionEncodeRoundTrip(t *testing.T) {
	position := models.Position{Latitude: -12.0001, Longitude: 99.9}
	parsed, err := models.ParsePosition(position.Encode())
	require.NoError(t, err)
	assert.Equal(t, position, parsed)
}

func TestParseSosEvent(t *testing.T) {
	event, err := models.ParseSosEvent([]byte(`{"email":"user@example.com","lat":48.1,"lon":11.5}`))
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", event.Email)
	assert.Equal(t, 48.1, event.Latitude)
	assert.Equal(t, 11.5, event.Longitude)
}

func TestParseSosEvent_Invalid(t *testing.T) {
	_, err := models.ParseSosEvent([]byte(`not json`))
	require.Error(t, err)

	_, err = models.ParseSosEvent([]byte(`{"lat":1,"lon":2}`))
	require.Error(t, err, "missing email must be rejected")
}

func TestParseWeatherEvent(t *testing.T) {
	payload := `{"email":"user@example.com","lat":48.1,"lon":11.5,"rain_prob":62,"uv_index":8.1}`
	event, err := models.ParseWeatherEvent([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, 62.0, event.RainProbability)
	assert.Equal(t, 8.1, event.UVIndex)
}

func TestParseWeatherEvent_Invalid(t *testing.T) {
	_, err := models.ParseWeatherEvent([]byte(`{`))
	require.Error(t, err)

	_, err = models.ParseWeatherEvent([]byte(`{"lat":1,"lon":2,"rain_prob":90}`))
	require.Error(t, err, "missing email must be rejected")
}
