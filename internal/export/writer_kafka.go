package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"HydroSpectra/internal/config"
	"HydroSpectra/internal/model"

	"github.com/segmentio/kafka-go"
)

// rowMessage is the JSON payload published per telemetry row. Measurement
// fields are pointers so that failed steps, which carry NaN, serialize as
// null instead of breaking the encoder.
type rowMessage struct {
	RunID            string   `json:"run_id"`
	HouseID          string   `json:"house_id"`
	Profile          string   `json:"profile"`
	TimeS            float64  `json:"time_s"`
	Flow             *float64 `json:"flow"`
	Pressure         *float64 `json:"pressure"`
	Velocity         *float64 `json:"velocity"`
	Leak             bool     `json:"leak"`
	Converged        bool     `json:"converged"`
	VelocityMeasured *float64 `json:"velocity_measured"`
	TransitTimeUp    *float64 `json:"transit_time_up"`
	TransitTimeDown  *float64 `json:"transit_time_down"`
	DeltaT           *float64 `json:"delta_t"`
	SignalQuality    float64  `json:"signal_quality"`
}

// KafkaWriter publishes telemetry rows to a Kafka topic, keyed by house so
// that one house's rows stay ordered within a partition. It implements the
// model.Writer interface.
type KafkaWriter struct {
	writer *kafka.Writer
}

// NewKafkaWriter creates a new Kafka writer for the configured brokers.
func NewKafkaWriter(cfg config.KafkaConfig) (model.Writer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka writer requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka writer requires a topic")
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	}
	return &KafkaWriter{writer: writer}, nil
}

// Name returns the writer type name.
func (w *KafkaWriter) Name() string { return "kafka" }

// Write publishes one message per row of the run.
func (w *KafkaWriter) Write(ctx context.Context, result *model.Result) error {
	if len(result.Rows) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(result.Rows))
	for _, row := range result.Rows {
		payload := rowMessage{
			RunID:            result.RunID,
			HouseID:          result.HouseID,
			Profile:          result.Profile,
			TimeS:            row.TimeS,
			Flow:             jsonFloat(row.Flow),
			Pressure:         jsonFloat(row.Pressure),
			Velocity:         jsonFloat(row.Velocity),
			Leak:             row.Leak,
			Converged:        row.Converged,
			VelocityMeasured: jsonFloat(row.VelocityMeasured),
			TransitTimeUp:    jsonFloat(row.TransitTimeUp),
			TransitTimeDown:  jsonFloat(row.TransitTimeDown),
			DeltaT:           jsonFloat(row.DeltaT),
			SignalQuality:    row.SignalQuality,
		}

		value, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal row message: %w", err)
		}

		msgs = append(msgs, kafka.Message{
			Key:   []byte(result.HouseID),
			Value: value,
			Time:  result.StartTime.Add(time.Duration(row.TimeS * float64(time.Second))),
		})
	}

	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write messages to kafka: %w", err)
	}

	log.Printf("Published %d rows to Kafka for run '%s'", len(msgs), result.RunID)
	return nil
}

// Close flushes and closes the underlying Kafka writer.
func (w *KafkaWriter) Close() error {
	return w.writer.Close()
}

// jsonFloat maps NaN to nil so the value serializes as JSON null.
func jsonFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
