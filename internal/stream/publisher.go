package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"HydroSpectra/internal/config"
	"HydroSpectra/internal/model"

	"github.com/nats-io/nats.go"
)

// Publisher is responsible for publishing telemetry rows to NATS. It
// implements the model.Writer interface so the fleet can fan results out to
// it like any other sink.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(cfg config.StreamConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Name returns the writer type name.
func (p *Publisher) Name() string { return "nats" }

// Write publishes every row of the run to <subject>.<house-id>, one message
// per row in time order.
func (p *Publisher) Write(ctx context.Context, result *model.Result) error {
	subject := fmt.Sprintf("%s.%s", p.subject, result.HouseID)
	for _, row := range result.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame := NewRowFrame(result, row)
		data, err := json.Marshal(frame)
		if err != nil {
			return fmt.Errorf("failed to marshal row frame: %w", err)
		}
		if err := p.nc.Publish(subject, data); err != nil {
			return fmt.Errorf("failed to publish to '%s': %w", subject, err)
		}
	}

	if err := p.nc.Flush(); err != nil {
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}
	log.Printf("Published %d rows to '%s'", len(result.Rows), subject)
	return nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() error {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			return fmt.Errorf("failed to drain NATS connection: %w", err)
		}
		log.Println("NATS connection drained and closed.")
	}
	return nil
}
