package services

import (
	"context"

	"auction-engine/internal/domain"
	"auction-engine/pkg/logger"
)

// EventListener fans bid events out to the websocket watchers of the
// affected auction.
type EventListener struct {
	subscriber  domain.EventSubscriber
	broadcaster domain.AuctionBroadcaster
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewEventListener(subscriber domain.EventSubscriber, broadcaster domain.AuctionBroadcaster,
	connManager domain.ConnectionManager, log logger.Logger) *EventListener {
	return &EventListener{
		subscriber:  subscriber,
		broadcaster: broadcaster,
		connManager: connManager,
		log:         log,
	}
}

func (l *EventListener) Start(ctx context.Context) {
	go func() {
		if err := l.subscriber.SubscribeToBidEvents(ctx, func(event *domain.BidEvent) error {
			return l.handleEvent(ctx, event)
		}); err != nil && ctx.Err() == nil {
			l.log.Error("Event subscription terminated", "error", err)
		}
	}()
}

func (l *EventListener) handleEvent(ctx context.Context, event *domain.BidEvent) error {
	if err := l.broadcaster.BroadcastToAuction(ctx, event.AuctionID, event); err != nil {
		return err
	}

	// Once the winner is recorded nobody is watching for more updates.
	if event.Type == domain.AuctionDone {
		return l.connManager.CloseAndUnregisterConnections(event.AuctionID)
	}
	return nil
}
