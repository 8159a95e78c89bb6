// Package services orchestrates writes across storage, the change-event
// broker and the live watch hub. Storage is the source of truth; event
// publishing is best effort and never fails a request.
package services

import (
	"context"
	"fmt"

	"tripmate/internal/amqp"
	"tripmate/internal/core"
	"tripmate/internal/log"
	"tripmate/internal/metrics"
	"tripmate/internal/storage"
	"tripmate/internal/watch"
)

// TripService handles the trip planner operations for one deployment.
type TripService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	hub        *watch.Hub
	metrics    *metrics.Metrics
	logger     *log.Logger
}

func NewTripService(repo *storage.SQLiteRepository, amqpClient *amqp.Client, hub *watch.Hub, m *metrics.Metrics, logger *log.Logger) *TripService {
	return &TripService{
		storage:    repo,
		amqpClient: amqpClient,
		hub:        hub,
		metrics:    m,
		logger:     logger.WithComponent(log.ComponentTrip),
	}
}

// CreateTrip validates and saves a trip, then fans the change out to the
// owner's live trip list and the sync worker.
func (s *TripService) CreateTrip(ctx context.Context, trip *core.Trip) (*core.Trip, error) {
	if err := trip.Validate(); err != nil {
		return nil, err
	}

	if err := s.storage.CreateTrip(ctx, trip); err != nil {
		return nil, fmt.Errorf("save trip: %w", err)
	}
	s.metrics.TripsWritten.WithLabelValues(amqp.ActionCreated).Inc()

	s.publish(ctx, amqp.NewTripEvent(amqp.ActionCreated, trip.OwnerID, trip.ID))
	s.hub.Notify(watch.TripsTopic(trip.OwnerID))
	return trip, nil
}

func (s *TripService) GetTrip(ctx context.Context, ownerID, tripID string) (*core.Trip, error) {
	return s.storage.GetTrip(ctx, ownerID, tripID)
}

// ListTrips returns the owner's trips, newest first.
func (s *TripService) ListTrips(ctx context.Context, ownerID string) ([]core.Trip, error) {
	return s.storage.ListTrips(ctx, ownerID)
}

// DeleteTrip removes the trip and its expenses and notifies both the trip
// list and the trip's ledger watchers.
func (s *TripService) DeleteTrip(ctx context.Context, ownerID, tripID string) error {
	if err := s.storage.DeleteTrip(ctx, ownerID, tripID); err != nil {
		return err
	}
	s.metrics.TripsWritten.WithLabelValues(amqp.ActionDeleted).Inc()

	s.publish(ctx, amqp.NewTripEvent(amqp.ActionDeleted, ownerID, tripID))
	s.hub.Notify(watch.TripsTopic(ownerID))
	s.hub.Notify(watch.ExpensesTopic(tripID))
	return nil
}

func (s *TripService) publish(ctx context.Context, event *amqp.ChangeEvent) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishChange(ctx, event); err != nil {
		// storage write already succeeded; the worker will catch up on
		// the next event for this trip
		s.logger.ErrorContext(ctx, "Failed to publish change event",
			"error", err,
			log.FieldTripID, event.TripID)
		return
	}
	s.metrics.EventsPublished.Inc()
}
