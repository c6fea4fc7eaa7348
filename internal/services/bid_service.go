package services

import (
	"context"
	"time"

	"auction-engine/internal/domain"
	"auction-engine/internal/engine"
	"auction-engine/pkg/logger"
)

// BidService is the server-side bid authority: it validates through the
// engine, appends to the persistent ledger, keeps the Redis price cache
// in step, and publishes bid events. The PlacedAt it stamps is the
// authoritative ordering timestamp.
type BidService struct {
	auctionRepo    domain.AuctionRepository
	bidRepo        domain.BidRepository
	stateCache     domain.AuctionStateCache
	priceCache     domain.PriceCache
	eventPub       domain.EventPublisher
	auctionManager *AuctionManager
	log            logger.Logger
}

func NewBidService(
	auctionRepo domain.AuctionRepository,
	bidRepo domain.BidRepository,
	stateCache domain.AuctionStateCache,
	priceCache domain.PriceCache,
	eventPub domain.EventPublisher,
	auctionManager *AuctionManager,
	log logger.Logger,
) *BidService {
	return &BidService{
		auctionRepo:    auctionRepo,
		bidRepo:        bidRepo,
		stateCache:     stateCache,
		priceCache:     priceCache,
		eventPub:       eventPub,
		auctionManager: auctionManager,
		log:            log,
	}
}

func (s *BidService) PlaceBid(ctx context.Context, auctionID, bidderID string, amount float64) (*domain.Bid, error) {
	s.log.Info("Placing bid", "auction_id", auctionID, "bidder_id", bidderID, "amount", amount)

	auction, err := s.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	// A bid attempt is also a clock tick: the window may have opened or
	// closed since the last scheduler pass.
	if engine.Advance(auction, now) {
		if err := s.auctionRepo.UpdateAuctionStatus(ctx, auctionID, auction.Status); err != nil {
			return nil, err
		}
		if err := s.stateCache.SetAuctionStatus(ctx, auctionID, auction.Status); err != nil {
			return nil, err
		}
	}

	history, err := s.bidRepo.GetBidHistory(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	bids := make([]domain.Bid, len(history))
	for i, b := range history {
		bids[i] = *b
	}
	ledger := engine.NewLedger(auction.StartingPrice, bids...)
	auction.CurrentPrice = ledger.CurrentPrice()

	bid, err := engine.ValidateBid(auction, ledger.HighestBidder(), bidderID, amount, now)
	if err != nil {
		s.publishEvent(ctx, domain.BidRejected, auctionID, bidderID, amount)
		return nil, err
	}

	if err := ledger.Append(*bid); err != nil {
		s.publishEvent(ctx, domain.BidRejected, auctionID, bidderID, amount)
		return nil, err
	}

	if err := s.bidRepo.AppendBid(ctx, bid); err != nil {
		return nil, err
	}
	if err := s.auctionRepo.UpdateCurrentPrice(ctx, auctionID, bid.Amount); err != nil {
		return nil, err
	}
	if err := s.priceCache.SetCurrentBid(ctx, auctionID, bidderID, bid.Amount); err != nil {
		s.log.Error("Failed to update price cache", "auction_id", auctionID, "error", err)
	}

	s.publishEvent(ctx, domain.BidAccepted, auctionID, bidderID, bid.Amount)

	// Immediate-win short-circuit: a bid at or above the buy-now price
	// ends the auction on the spot and that bid wins.
	if auction.HasBuyNow() && bid.Amount >= auction.BuyNowPrice {
		if err := s.endForBuyNow(ctx, auction); err != nil {
			s.log.Error("Buy-now end failed", "auction_id", auctionID, "error", err)
		}
	}

	return bid, nil
}

func (s *BidService) BidHistory(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	history, err := s.bidRepo.GetBidHistory(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	// Most recent first for display; storage order stays placedAt ASC.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}

func (s *BidService) endForBuyNow(ctx context.Context, auction *domain.Auction) error {
	if err := engine.Transition(auction, domain.AuctionEnded); err != nil {
		return err
	}

	s.log.Info("Auction ended by buy-now bid", "auction_id", auction.ID)

	if err := s.auctionRepo.UpdateAuctionStatus(ctx, auction.ID, domain.AuctionEnded); err != nil {
		return err
	}
	if err := s.stateCache.SetAuctionStatus(ctx, auction.ID, domain.AuctionEnded); err != nil {
		return err
	}

	s.publishEvent(ctx, domain.AuctionClosed, auction.ID, "", auction.CurrentPrice)

	return s.auctionManager.SettleAuction(ctx, auction.ID)
}

func (s *BidService) publishEvent(ctx context.Context, eventType domain.BidEventType, auctionID, bidderID string, amount float64) {
	err := s.eventPub.PublishBidEvent(ctx, &domain.BidEvent{
		Type:      eventType,
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		Timestamp: time.Now(),
	})
	if err != nil {
		s.log.Error("Failed to publish bid event", "auction_id", auctionID, "type", eventType, "error", err)
	}
}
