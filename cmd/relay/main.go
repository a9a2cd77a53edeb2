package main

import (
	"context"
	"fmt"
	"github.com/rs/zerolog/log"
	"os"
	"os/signal"
	"syscall"
	"time"
	"umbrella-relay/internal/api"
	"umbrella-relay/internal/config"
	"umbrella-relay/internal/database/influx"
	"umbrella-relay/internal/database/postgres"
	"umbrella-relay/internal/database/postgres/repositories"
	"umbrella-relay/internal/logger"
	"umbrella-relay/internal/mq"
	"umbrella-relay/internal/mq/handlers"
	"umbrella-relay/internal/notifier"
	"umbrella-relay/internal/services"
	"umbrella-relay/internal/ws"
)

type Application struct {
	config *config.Config

	postgresDB *postgres.PostgresDB
	influxDB   *influx.InfluxDB

	accountRepository *repositories.AccountRepository
	telemetryWriter   *influx.TelemetryWriter

	mailer *notifier.Mailer
	hub    *ws.Hub

	relayService   *services.RelayService
	otpService     *services.OtpService
	accountService *services.AccountService

	mqttClient   *mq.Client
	topicManager *mq.TopicManager

	gpsHandler     *handlers.GpsHandler
	statusHandler  *handlers.StatusHandler
	sosHandler     *handlers.SosHandler
	weatherHandler *handlers.WeatherHandler

	apiServer *api.Server

	shutdownChan chan os.Signal
	ctx          context.Context
	cancelFunc   context.CancelFunc
}

func main() {
	app := &Application{}

	if err := app.initialize(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	if err := app.run(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run application")
	}
}

func (app *Application) initialize() error {
	var err error

	app.config, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	logger.NewLogger(app.config.Logger)
	log.Info().
		Str("component", "main").
		Str("version", app.config.Service.Version).
		Msg("Setting up service...")

	app.ctx, app.cancelFunc = context.WithCancel(context.Background())
	app.shutdownChan = make(chan os.Signal, 1)
	signal.Notify(app.shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.initializeDatabases(); err != nil {
		return fmt.Errorf("error while initializing databases: %w", err)
	}

	if err := app.initializeMQTT(); err != nil {
		return fmt.Errorf("error while initializing MQTT: %w", err)
	}

	if err := app.initializeServices(); err != nil {
		return fmt.Errorf("error while initializing services: %w", err)
	}

	if err := app.setupTopicHandlers(); err != nil {
		return fmt.Errorf("error while setting up topic handlers: %w", err)
	}

	app.apiServer = api.NewServer(
		app.otpService,
		app.accountService,
		app.hub,
		logger.GetLogger("api-server"),
	)

	log.Info().Msg("Successfully initialized application")
	return nil
}

func (app *Application) initializeDatabases() error {
	var err error

	app.postgresDB, err = postgres.NewConnection(app.config.Postgres)
	if err != nil {
		return fmt.Errorf("could not connect to PostgreSQL: %w", err)
	}

	app.influxDB, err = influx.NewConnection(&app.config.InfluxDB)
	if err != nil {
		return fmt.Errorf("could not connect to InfluxDB: %w", err)
	}

	app.accountRepository = repositories.NewAccountRepository(app.postgresDB.GetDB())
	app.telemetryWriter = influx.NewTelemetryWriter(
		app.influxDB.GetWriteAPI(),
		logger.GetLogger("telemetry-writer"),
	)

	log.Info().
		Str("component", "main").
		Str("host", app.config.Postgres.Host).
		Msg("Successfully initialized databases")
	return nil
}

func (app *Application) initializeMQTT() error {
	var err error

	app.topicManager = mq.NewTopicManager(app.config.MQTT.BaseTopic)

	app.mqttClient, err = mq.NewClient(&app.config.MQTT, logger.GetLogger("mq-client"))
	if err != nil {
		return fmt.Errorf("could not create MQTT client: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(app.ctx, 30*time.Second)
	defer cancel()

	if err := app.mqttClient.Connect(connectCtx); err != nil {
		return fmt.Errorf("could not connect to MQTT broker: %w", err)
	}

	log.Info().
		Str("component", "main").
		Msg("Successfully initialized MQTT client")

	return nil
}

func (app *Application) initializeServices() error {
	app.mailer = notifier.NewMailer(app.config.SMTP, logger.GetLogger("mailer"))

	app.hub = ws.NewHub(logger.GetLogger("observer-hub"))
	go app.hub.Run(app.ctx)

	app.relayService = services.NewRelayService(
		app.accountRepository,
		app.mailer,
		app.hub,
		app.telemetryWriter,
		app.config.Alerts,
		logger.GetLogger("relay-service"),
	)

	app.otpService = services.NewOtpService(
		app.accountRepository,
		app.mailer,
		app.mqttClient,
		app.topicManager,
		app.config.Otp,
		logger.GetLogger("otp-service"),
	)

	app.accountService = services.NewAccountService(
		app.accountRepository,
		app.mqttClient,
		app.topicManager,
		logger.GetLogger("account-service"),
	)

	log.Info().
		Str("component", "main").
		Msg("Successfully initialized services")
	return nil
}

func (app *Application) setupTopicHandlers() error {
	app.gpsHandler = handlers.NewGpsHandler(app.relayService, logger.GetLogger("gps-handler"))
	app.statusHandler = handlers.NewStatusHandler(app.relayService, logger.GetLogger("status-handler"))
	app.sosHandler = handlers.NewSosHandler(app.relayService, logger.GetLogger("sos-handler"))
	app.weatherHandler = handlers.NewWeatherHandler(app.relayService, logger.GetLogger("weather-handler"))

	if err := app.mqttClient.Subscribe(app.topicManager.GetGpsTopic(), app.gpsHandler.HandleMessage); err != nil {
		return fmt.Errorf("error subscribing to gps topic: %w", err)
	}
	if err := app.mqttClient.Subscribe(app.topicManager.GetStatusTopic(), app.statusHandler.HandleMessage); err != nil {
		return fmt.Errorf("error subscribing to status topic: %w", err)
	}
	if err := app.mqttClient.Subscribe(app.topicManager.GetSosTopic(), app.sosHandler.HandleMessage); err != nil {
		return fmt.Errorf("error subscribing to sos topic: %w", err)
	}
	if err := app.mqttClient.Subscribe(app.topicManager.GetWeatherTopic(), app.weatherHandler.HandleMessage); err != nil {
		return fmt.Errorf("error subscribing to weather topic: %w", err)
	}

	return nil
}

func (app *Application) run() error {
	errChan := make(chan error, 1)
	go func() {
		if err := app.apiServer.Start(app.config.HTTP.Port); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-app.shutdownChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errChan:
		log.Error().Err(err).Msg("HTTP server failed")
	case <-app.ctx.Done():
		log.Info().Msg("context cancelled, shutting down application")
	}

	return app.shutdown()
}

func (app *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.HTTP.ShutdownTimeout)
	defer cancel()

	if app.apiServer != nil {
		if err := app.apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down HTTP server")
		}
	}

	if app.mqttClient != nil {
		app.mqttClient.Disconnect()
	}

	if app.influxDB != nil {
		app.influxDB.Close()
	}

	if app.postgresDB != nil {
		if err := app.postgresDB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing PostgreSQL connection")
		}
	}

	app.cancelFunc()
	return nil
}
