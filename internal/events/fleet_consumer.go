package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ecoride-campus/service-rental/internal/kafka"
)

// MaintenanceFlagger flips a bike into maintenance. Implemented by the
// bike application service.
type MaintenanceFlagger interface {
	FlagForMaintenance(ctx context.Context, bikeID uuid.UUID, reason string) error
}

// FleetEventConsumer consumes fleet events and applies them to the bike
// fleet. Unknown event types are acknowledged and skipped.
type FleetEventConsumer struct {
	consumer *kafka.Consumer
	flagger  MaintenanceFlagger
	logger   *zap.Logger
}

// NewFleetEventConsumer creates a FleetEventConsumer.
func NewFleetEventConsumer(consumer *kafka.Consumer, flagger MaintenanceFlagger, logger *zap.Logger) *FleetEventConsumer {
	return &FleetEventConsumer{
		consumer: consumer,
		flagger:  flagger,
		logger:   logger,
	}
}

// Start runs the consume loop until the context is cancelled.
func (c *FleetEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

func (c *FleetEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	event, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Warn("skipping malformed fleet event",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return nil
	}

	switch event.Type {
	case BikeMaintenanceRequested:
		return c.handleMaintenanceRequested(ctx, event)
	default:
		c.logger.Debug("ignoring fleet event type", zap.String("type", event.Type))
		return nil
	}
}

func (c *FleetEventConsumer) handleMaintenanceRequested(ctx context.Context, event kafka.CloudEvent) error {
	var payload BikeMaintenanceRequestedEvent
	if err := event.ParseData(&payload); err != nil {
		c.logger.Warn("skipping maintenance event with malformed payload",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return nil
	}

	if err := c.flagger.FlagForMaintenance(ctx, payload.BikeID, payload.Reason); err != nil {
		return fmt.Errorf("failed to flag bike %s for maintenance: %w", payload.BikeID, err)
	}

	c.logger.Info("bike flagged for maintenance",
		zap.String("bike_id", payload.BikeID.String()),
		zap.String("reason", payload.Reason),
	)
	return nil
}
