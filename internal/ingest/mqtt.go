package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/robo-ride/internal/db"
	"github.com/ukydev/robo-ride/internal/models"
	"github.com/ukydev/robo-ride/internal/observability"
)

// handleTimeout bounds the storage writes for one telemetry message.
const handleTimeout = 10 * time.Second

// MQTTIngestor subscribes to the fleet telemetry topic and feeds reports
// into the same registry upsert path as the HTTP sensor endpoint. Vehicles
// in the field publish the identical JSON payload either way.
type MQTTIngestor struct {
	client   mqtt.Client
	topic    string
	vehicles db.VehicleRegistry
	taps     db.TapLog
	log      log.FieldLogger
}

// NewMQTTIngestor connects to the broker and returns a ready ingestor.
func NewMQTTIngestor(broker, clientID, topic string, vehicles db.VehicleRegistry, taps db.TapLog, logger log.FieldLogger) (*MQTTIngestor, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, token.Error())
	}
	return &MQTTIngestor{
		client:   client,
		topic:    topic,
		vehicles: vehicles,
		taps:     taps,
		log:      logger,
	}, nil
}

// Start subscribes to the telemetry topic. Messages are handled on paho's
// callback goroutines; each one is an independent upsert.
func (i *MQTTIngestor) Start() error {
	if token := i.client.Subscribe(i.topic, 1, i.handleMessage); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", i.topic, token.Error())
	}
	i.log.WithField("topic", i.topic).Info("mqtt telemetry ingest started")
	return nil
}

// Stop unsubscribes and disconnects.
func (i *MQTTIngestor) Stop() {
	i.client.Unsubscribe(i.topic)
	i.client.Disconnect(250)
}

func (i *MQTTIngestor) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var report models.SensorReport
	if err := json.Unmarshal(msg.Payload(), &report); err != nil {
		i.log.WithFields(log.Fields{"topic": msg.Topic(), "error": err}).Warn("dropping malformed telemetry message")
		return
	}
	if report.VehicleID == "" {
		i.log.WithField("topic", msg.Topic()).Warn("dropping telemetry message without vehicleId")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if _, err := i.vehicles.UpsertTelemetry(ctx, report); err != nil {
		i.log.WithFields(log.Fields{"vehicle_id": report.VehicleID, "error": err}).Error("mqtt telemetry upsert failed")
		return
	}
	observability.TelemetryReportsTotal.WithLabelValues("mqtt").Inc()

	if err := i.taps.InsertTaps(ctx, report.RFIDTaps); err != nil {
		i.log.WithFields(log.Fields{"vehicle_id": report.VehicleID, "error": err}).Error("mqtt rfid tap insert failed")
	}
}
