package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/robo-ride/internal/config"
	"github.com/ukydev/robo-ride/internal/db"
	"github.com/ukydev/robo-ride/internal/dispatch"
	"github.com/ukydev/robo-ride/internal/gateway"
	"github.com/ukydev/robo-ride/internal/handlers"
	"github.com/ukydev/robo-ride/internal/ingest"
	"github.com/ukydev/robo-ride/internal/middleware"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	log.SetFormatter(&log.JSONFormatter{})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	logger := log.StandardLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage comes up before the server accepts any traffic.
	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())
	logger.Info("connected to MongoDB")

	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	vehicles := &db.MongoVehicleRegistry{Collection: database.Collection(db.VehiclesCollection)}
	rides := &db.MongoRideLedger{Collection: database.Collection(db.RidesCollection)}
	taps := &db.MongoTapLog{Collection: database.Collection(db.RFIDCollection)}

	commander := gateway.NewHTTPCommander(cfg.GatewayTimeout)
	coordinator := dispatch.NewService(vehicles, rides, commander, logger)

	sensorHandler := handlers.NewSensorHandler(vehicles, taps, logger)
	rideHandler := handlers.NewRideHandler(coordinator, rides, logger)
	vehicleHandler := handlers.NewVehicleHandler(vehicles, coordinator, logger)
	rfidHandler := handlers.NewRFIDHandler(taps, logger)
	healthHandler := handlers.NewHealthHandler(func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	})

	router := mux.NewRouter()
	router.Use(middleware.Recover(logger))
	router.Use(middleware.Logging(logger))
	router.Use(middleware.CORS)

	router.HandleFunc("/api/sensor", sensorHandler.Report).Methods(http.MethodPost)
	router.HandleFunc("/api/rides", rideHandler.Book).Methods(http.MethodPost)
	router.HandleFunc("/api/rides", rideHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/api/rides/{id}/complete", rideHandler.Complete).Methods(http.MethodPost)
	router.HandleFunc("/api/vehicles", vehicleHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/api/vehicle/{id}", vehicleHandler.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/vehicle/{id}/emergency-stop", vehicleHandler.EmergencyStop).Methods(http.MethodPost)
	router.HandleFunc("/api/rfid", rfidHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/healthz", healthHandler.Healthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if cfg.MQTTBroker != "" {
		ingestor, err := ingest.NewMQTTIngestor(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic, vehicles, taps, logger)
		if err != nil {
			log.Fatalf("Failed to start MQTT ingest: %v", err)
		}
		if err := ingestor.Start(); err != nil {
			log.Fatalf("Failed to subscribe MQTT ingest: %v", err)
		}
		defer ingestor.Stop()
	}

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("robo-ride backend listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithField("error", err).Error("shutdown incomplete")
	}
}
