package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	MQTT     MQTTConfig     `json:"mqtt"`
	Postgres PostgresConfig `json:"postgres"`
	InfluxDB InfluxConfig   `json:"influxdb"`
	SMTP     SMTPConfig     `json:"smtp"`
	HTTP     HTTPConfig     `json:"http"`
	Alerts   AlertsConfig   `json:"alerts"`
	Otp      OtpConfig      `json:"otp"`
	Logger   LoggerConfig   `json:"logger"`
	Service  ServiceConfig  `json:"service"`
}

type MQTTConfig struct {
	Host                 string        `json:"host"`
	Port                 int           `json:"port"`
	Username             string        `json:"username"`
	Password             string        `json:"password"`
	ClientID             string        `json:"client_id"`
	BaseTopic            string        `json:"base_topic"`
	QoS                  byte          `json:"qos"`
	KeepAlive            int           `json:"keep_alive"`
	AutoReconnect        bool          `json:"auto_reconnect"`
	MaxReconnectInterval time.Duration `json:"max_reconnect_interval"`
	CleanSession         bool          `json:"clean_session"`
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Dsn      string `json:"dsn"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
	TimeZone string `json:"timezone"`
}

type InfluxConfig struct {
	URL           string `json:"url"`
	Token         string `json:"token"`
	Organization  string `json:"organization"`
	Bucket        string `json:"bucket"`
	BatchSize     int    `json:"batch_size"`
	FlushInterval int    `json:"flush_interval_seconds"`
}

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

type HTTPConfig struct {
	Port            int           `json:"port"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type AlertsConfig struct {
	RainProbThreshold float64 `json:"rain_prob_threshold"`
	UVIndexThreshold  float64 `json:"uv_index_threshold"`
}

type OtpConfig struct {
	CodeDigits int           `json:"code_digits"`
	CodeTTL    time.Duration `json:"code_ttl"`
}

type LoggerConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

type ServiceConfig struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		MQTT: MQTTConfig{
			Host:                 getEnv("MQTT_HOST", "localhost"),
			Port:                 getEnvAsInt("MQTT_PORT", 1883),
			Username:             getEnv("MQTT_USERNAME", ""),
			Password:             getEnv("MQTT_PASSWORD", ""),
			ClientID:             getEnv("MQTT_CLIENT_ID", "umbrella-relay"),
			BaseTopic:            getEnv("MQTT_BASE_TOPIC", "umbrella"),
			QoS:                  byte(getEnvAsInt("MQTT_QOS", 1)),
			KeepAlive:            getEnvAsInt("MQTT_KEEP_ALIVE", 60),
			AutoReconnect:        getEnvAsBool("MQTT_AUTO_RECONNECT", true),
			MaxReconnectInterval: getEnvAsDuration("MQTT_MAX_RECONNECT_INTERVAL", "10s"),
			CleanSession:         getEnvAsBool("MQTT_CLEAN_SESSION", true),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DATABASE", "smartumbrella"),
			SSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
		},
		InfluxDB: InfluxConfig{
			URL:           getEnv("INFLUXDB_URL", "http://localhost:8086"),
			Token:         getEnv("INFLUXDB_TOKEN", ""),
			Organization:  getEnv("INFLUXDB_ORG", "umbrella"),
			Bucket:        getEnv("INFLUXDB_BUCKET", "telemetry"),
			BatchSize:     getEnvAsInt("INFLUXDB_BATCH_SIZE", 100),
			FlushInterval: getEnvAsInt("INFLUXDB_FLUSH_INTERVAL", 10),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		HTTP: HTTPConfig{
			Port:            getEnvAsInt("HTTP_PORT", 3000),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", "10s"),
		},
		Alerts: AlertsConfig{
			RainProbThreshold: getEnvAsFloat("ALERT_RAIN_PROB_THRESHOLD", 50),
			UVIndexThreshold:  getEnvAsFloat("ALERT_UV_INDEX_THRESHOLD", 7),
		},
		Otp: OtpConfig{
			CodeDigits: getEnvAsInt("OTP_CODE_DIGITS", 6),
			CodeTTL:    getEnvAsDuration("OTP_CODE_TTL", "5m"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "umbrella-relay"),
			Version: getEnv("SERVICE_VERSION", "1.0.0"),
		},
	}

	baseTopic, found := strings.CutSuffix(config.MQTT.BaseTopic, "/")
	if found {
		config.MQTT.BaseTopic = baseTopic
	}

	config.Postgres.Dsn = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		config.Postgres.Host, config.Postgres.Port, config.Postgres.User, config.Postgres.Password, config.Postgres.Database,
		func() string {
			if config.Postgres.SSLMode == "false" || config.Postgres.SSLMode == "" {
				return "disable"
			}
			return config.Postgres.SSLMode
		}(),
		config.Postgres.TimeZone,
	)

	return config, config.validate()
}

func (c *Config) validate() error {
	if c.SMTP.From == "" {
		c.SMTP.From = c.SMTP.Username
	}
	if c.Otp.CodeDigits < 4 || c.Otp.CodeDigits > 9 {
		return fmt.Errorf("OTP_CODE_DIGITS must be between 4 and 9, got %d", c.Otp.CodeDigits)
	}
	if c.Otp.CodeTTL <= 0 {
		return fmt.Errorf("OTP_CODE_TTL must be positive, got %s", c.Otp.CodeTTL)
	}
	if c.Alerts.RainProbThreshold < 0 || c.Alerts.RainProbThreshold > 100 {
		return fmt.Errorf("ALERT_RAIN_PROB_THRESHOLD must be between 0 and 100, got %.1f", c.Alerts.RainProbThreshold)
	}
	if c.Alerts.UVIndexThreshold < 0 {
		return fmt.Errorf("ALERT_UV_INDEX_THRESHOLD cannot be negative, got %.1f", c.Alerts.UVIndexThreshold)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
