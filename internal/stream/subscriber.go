package stream

import (
	"encoding/json"
	"fmt"
	"log"

	"HydroSpectra/internal/config"

	"github.com/nats-io/nats.go"
)

// FrameHandler is a function that processes a received RowFrame.
type FrameHandler func(frame RowFrame)

// Subscriber is responsible for subscribing to the telemetry subject tree
// and processing frames.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(cfg config.StreamConfig) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Subscriber{nc: nc, subject: cfg.Subject}, nil
}

// Start subscribes to every house under the configured subject and starts
// processing frames with the provided handler.
func (s *Subscriber) Start(handler FrameHandler) error {
	wildcard := s.subject + ".>"
	sub, err := s.nc.Subscribe(wildcard, func(msg *nats.Msg) {
		var frame RowFrame
		if err := json.Unmarshal(msg.Data, &frame); err != nil {
			log.Printf("Error unmarshalling row frame: %v", err)
			return
		}
		handler(frame)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to '%s': %w", wildcard, err)
	}
	s.sub = sub
	log.Printf("Subscribed to '%s'. Waiting for frames...", wildcard)
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		log.Println("NATS connection closed.")
	}
}
