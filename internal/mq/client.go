package mq

import (
	"context"
	"encoding/json"
	"fmt"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"math/rand"
	"sync"
	"time"
	"umbrella-relay/internal/config"
)

type MessageOptions struct {
	Qos      byte          `json:"qos"`
	Retained bool          `json:"retained"`
	Timeout  time.Duration `json:"timeout"`
}

func DefaultMessageOptions() *MessageOptions {
	return &MessageOptions{
		Qos:      0,
		Retained: false,
		Timeout:  5 * time.Second,
	}
}

type subscription struct {
	topic   string
	qos     byte
	handler mqtt.MessageHandler
}

// Client wraps the paho MQTT client. It is safe for concurrent publishes and
// re-subscribes all registered handlers after a reconnect.
type Client struct {
	client    mqtt.Client
	config    *config.MQTTConfig
	logger    zerolog.Logger
	connected bool

	mu            sync.Mutex
	subscriptions []subscription
}

func NewClient(cfg *config.MQTTConfig, logger zerolog.Logger) (*Client, error) {
	opts := mqtt.NewClientOptions()

	brokerURL := fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)
	opts.AddBroker(brokerURL)

	clientID := fmt.Sprintf("%s-%d", cfg.ClientID, rand.Intn(10000))
	opts.SetClientID(clientID)

	if cfg.Username != "" && cfg.Password != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetKeepAlive(time.Duration(cfg.KeepAlive) * time.Second)
	opts.SetAutoReconnect(cfg.AutoReconnect)
	opts.SetMaxReconnectInterval(cfg.MaxReconnectInterval)
	opts.SetCleanSession(cfg.CleanSession)
	opts.SetOrderMatters(false)

	mqttClient := &Client{
		config:    cfg,
		logger:    logger,
		connected: false,
	}

	opts.SetOnConnectHandler(mqttClient.onConnect)
	opts.SetConnectionLostHandler(mqttClient.onConnectionLost)

	mqttClient.client = mqtt.NewClient(opts)

	return mqttClient, nil
}

func (c *Client) Connect(ctx context.Context) error {
	token := c.client.Connect()

	select {
	case <-token.Done():
		if token.Error() != nil {
			return fmt.Errorf("error connecting to MQTT broker: %w", token.Error())
		}
		c.connected = true
		return nil
	case <-ctx.Done():
		return fmt.Errorf("connection to MQTT broker timed out: %w", ctx.Err())
	}
}

func (c *Client) Disconnect() {
	if c.client.IsConnected() {
		c.logger.Info().Msg("disconnecting from MQTT broker...")
		c.client.Disconnect(250)
		c.connected = false
	}
}

func (c *Client) Subscribe(topic string, handler mqtt.MessageHandler) error {
	if !c.client.IsConnected() {
		return fmt.Errorf("MQTT client is not connected, cannot subscribe to topic %s", topic)
	}

	token := c.client.Subscribe(topic, c.config.QoS, handler)
	token.Wait()

	if token.Error() != nil {
		return fmt.Errorf("error subscribing to topic %s: %w", topic, token.Error())
	}

	c.mu.Lock()
	c.subscriptions = append(c.subscriptions, subscription{
		topic:   topic,
		qos:     c.config.QoS,
		handler: handler,
	})
	c.mu.Unlock()

	c.logger.Info().Str("topic", topic).Msg("Added topic subscription")

	return nil
}

func (c *Client) PublishWithOptions(topic string, payload []byte, options *MessageOptions) error {
	if !c.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}

	token := c.client.Publish(topic, options.Qos, options.Retained, payload)
	token.WaitTimeout(options.Timeout)

	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}

	c.logger.Debug().
		Str("topic", topic).
		Int("payload_size", len(payload)).
		Msg("successfully published message")

	return nil
}

func (c *Client) Publish(topic string, payload []byte) error {
	return c.PublishWithOptions(topic, payload, DefaultMessageOptions())
}

// PublishRetainedJson marshals data and publishes it retained, so late
// subscribers still receive the latest announcement.
func (c *Client) PublishRetainedJson(topic string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	options := DefaultMessageOptions()
	options.Retained = true

	return c.PublishWithOptions(topic, payload, options)
}

func (c *Client) IsConnected() bool {
	return c.connected && c.client.IsConnected()
}

func (c *Client) onConnect(client mqtt.Client) {
	c.connected = true
	c.logger.Info().
		Str("broker", c.config.Host).
		Msg("Successfully connected to broker")

	c.mu.Lock()
	subs := make([]subscription, len(c.subscriptions))
	copy(subs, c.subscriptions)
	c.mu.Unlock()

	for _, sub := range subs {
		token := client.Subscribe(sub.topic, sub.qos, sub.handler)
		token.Wait()
		if token.Error() != nil {
			c.logger.Error().Err(token.Error()).
				Str("topic", sub.topic).
				Msg("Failed to restore subscription")
		}
	}
}

func (c *Client) onConnectionLost(client mqtt.Client, err error) {
	c.connected = false
	c.logger.Warn().Err(err).Msg("lost connection to broker")
}
