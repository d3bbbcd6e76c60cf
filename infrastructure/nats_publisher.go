package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"crapstable/events"
)

// eventEnvelope wraps an event payload with delivery metadata for
// downstream consumers.
type eventEnvelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"sourceService"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSPublisher republishes table events to NATS subjects so other
// services can consume them.
type NATSPublisher struct {
	servers string
	nc      *nats.Conn
}

// NewNATSPublisher creates a new NATS publisher
func NewNATSPublisher(servers string) *NATSPublisher {
	return &NATSPublisher{servers: servers}
}

// Connect establishes a connection to the NATS server
func (p *NATSPublisher) Connect(ctx context.Context) error {
	opts := []nats.Option{
		nats.Name("crapstable"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(p.servers, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	p.nc = nc
	log.WithField("servers", p.servers).Info("Connected to NATS")
	return nil
}

// Close drains and closes the NATS connection
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			log.WithError(err).Warn("Failed to drain NATS connection")
		}
	}
}

// AttachTo subscribes the publisher to every table event type on the bus.
// Publishing is fire and forget, a NATS outage never blocks the table.
func (p *NATSPublisher) AttachTo(bus *events.Bus) {
	types := []events.EventType{
		events.EventTypeBalanceChange,
		events.EventTypePlayerCreated,
		events.EventTypeBetPlaced,
		events.EventTypeBetRemoved,
		events.EventTypeRollResolved,
		events.EventTypePayoutMismatch,
	}
	for _, et := range types {
		bus.Subscribe(et, func(ctx context.Context, e events.Event) {
			p.publish(e)
		})
	}
}

func (p *NATSPublisher) publish(event events.Event) {
	subject := subjectFor(event.Type())

	payload, err := json.Marshal(event)
	if err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to marshal event payload")
		return
	}

	envelope := eventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: "crapstable",
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		log.WithError(err).Error("Failed to marshal event envelope")
		return
	}

	if err := p.nc.Publish(subject, data); err != nil {
		log.WithFields(log.Fields{
			"subject": subject,
			"error":   err,
		}).Error("Failed to publish event to NATS")
		return
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Published event to NATS")
}

// subjectFor maps a table event type to its NATS subject
func subjectFor(et events.EventType) string {
	switch et {
	case events.EventTypeBalanceChange:
		return "players.balance_changed"
	case events.EventTypePlayerCreated:
		return "players.created"
	case events.EventTypeBetPlaced:
		return "table.bets.placed"
	case events.EventTypeBetRemoved:
		return "table.bets.removed"
	case events.EventTypeRollResolved:
		return "table.rolls.resolved"
	case events.EventTypePayoutMismatch:
		return "table.rolls.mismatch"
	default:
		return fmt.Sprintf("unknown.%s", et)
	}
}
