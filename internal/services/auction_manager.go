package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/domain"
	"auction-engine/internal/engine"
	"auction-engine/pkg/logger"
	"auction-engine/pkg/utils"
)

// AuctionManager owns the server-side auction lifecycle: creation,
// start/end transitions fired by the scheduler, and settlement. Every
// status change goes through the engine state machine.
type AuctionManager struct {
	auctionRepo    domain.AuctionRepository
	bidRepo        domain.BidRepository
	stateCache     domain.AuctionStateCache
	priceCache     domain.PriceCache
	eventPub       domain.EventPublisher
	scheduler      domain.LifecycleScheduler
	leaderElection domain.LeaderElection
	instanceID     string
	log            logger.Logger
}

func NewAuctionManager(
	auctionRepo domain.AuctionRepository,
	bidRepo domain.BidRepository,
	stateCache domain.AuctionStateCache,
	priceCache domain.PriceCache,
	eventPub domain.EventPublisher,
	scheduler domain.LifecycleScheduler,
	leaderElection domain.LeaderElection,
	instanceID string,
	log logger.Logger,
) *AuctionManager {
	return &AuctionManager{
		auctionRepo:    auctionRepo,
		bidRepo:        bidRepo,
		stateCache:     stateCache,
		priceCache:     priceCache,
		eventPub:       eventPub,
		scheduler:      scheduler,
		leaderElection: leaderElection,
		instanceID:     instanceID,
		log:            log,
	}
}

// SetScheduler breaks the construction cycle between the manager and
// the scheduler; call it before Start.
func (am *AuctionManager) SetScheduler(scheduler domain.LifecycleScheduler) {
	am.scheduler = scheduler
}

type CreateAuctionParams struct {
	Title         string
	SellerID      string
	StartingPrice float64
	BuyNowPrice   float64
	BidIncrement  float64
	StartTime     time.Time
	EndTime       time.Time
}

func (p CreateAuctionParams) validate() error {
	if !p.StartTime.Before(p.EndTime) {
		return fmt.Errorf("start time must be before end time")
	}
	if p.StartingPrice <= 0 {
		return fmt.Errorf("starting price must be positive")
	}
	if p.BidIncrement <= 0 {
		return fmt.Errorf("bid increment must be positive")
	}
	if p.BuyNowPrice != 0 && p.BuyNowPrice <= p.StartingPrice {
		return fmt.Errorf("buy-now price must exceed the starting price")
	}
	return nil
}

func (am *AuctionManager) CreateAuction(ctx context.Context, params CreateAuctionParams) (*domain.Auction, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	auction := &domain.Auction{
		ID:            utils.GenerateID("auction"),
		Title:         params.Title,
		SellerID:      params.SellerID,
		StartingPrice: params.StartingPrice,
		CurrentPrice:  params.StartingPrice,
		BuyNowPrice:   params.BuyNowPrice,
		BidIncrement:  params.BidIncrement,
		StartTime:     params.StartTime,
		EndTime:       params.EndTime,
		Status:        domain.AuctionScheduled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// An auction whose window is already open starts active.
	if !now.Before(params.StartTime) {
		auction.Status = domain.AuctionActive
	}

	if err := am.auctionRepo.CreateAuction(ctx, auction); err != nil {
		return nil, err
	}

	if err := am.priceCache.InitializeAuction(ctx, auction.ID, auction.StartingPrice, auction.BidIncrement); err != nil {
		return nil, err
	}

	if err := am.stateCache.SetAuctionStatus(ctx, auction.ID, auction.Status); err != nil {
		return nil, err
	}

	if auction.Status == domain.AuctionScheduled {
		if err := am.scheduler.ScheduleAuctionStart(ctx, auction.ID, auction.StartTime); err != nil {
			return nil, err
		}
	}
	if err := am.scheduler.ScheduleAuctionEnd(ctx, auction.ID, auction.EndTime); err != nil {
		return nil, err
	}

	am.log.Info("Auction created", "auction_id", auction.ID, "status", auction.Status.String())
	return auction, nil
}

func (am *AuctionManager) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	return am.auctionRepo.GetAuction(ctx, auctionID)
}

func (am *AuctionManager) StartAuction(ctx context.Context, auctionID string) error {
	isLeader, err := am.leaderElection.IsLeader(ctx, am.instanceID)
	if err != nil || !isLeader {
		return err
	}

	auction, err := am.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction.Status != domain.AuctionScheduled {
		return nil
	}

	if err := engine.Transition(auction, domain.AuctionActive); err != nil {
		return err
	}

	am.log.Info("Starting auction", "auction_id", auctionID)

	if err := am.auctionRepo.UpdateAuctionStatus(ctx, auctionID, domain.AuctionActive); err != nil {
		return err
	}
	if err := am.stateCache.SetAuctionStatus(ctx, auctionID, domain.AuctionActive); err != nil {
		return err
	}

	return am.eventPub.PublishBidEvent(ctx, &domain.BidEvent{
		Type:      domain.AuctionStarted,
		AuctionID: auctionID,
		Timestamp: time.Now(),
	})
}

func (am *AuctionManager) EndAuction(ctx context.Context, auctionID string) error {
	isLeader, err := am.leaderElection.IsLeader(ctx, am.instanceID)
	if err != nil || !isLeader {
		return err
	}

	auction, err := am.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	// Prevent double-ending; a buy-now bid may already have closed it.
	if auction.Status != domain.AuctionActive {
		return nil
	}

	if err := engine.Transition(auction, domain.AuctionEnded); err != nil {
		return err
	}

	am.log.Info("Ending auction", "auction_id", auctionID)

	if err := am.auctionRepo.UpdateAuctionStatus(ctx, auctionID, domain.AuctionEnded); err != nil {
		return err
	}
	if err := am.stateCache.SetAuctionStatus(ctx, auctionID, domain.AuctionEnded); err != nil {
		return err
	}

	if err := am.eventPub.PublishBidEvent(ctx, &domain.BidEvent{
		Type:      domain.AuctionClosed,
		AuctionID: auctionID,
		Timestamp: time.Now(),
	}); err != nil {
		return err
	}

	// Winner resolution runs as its own job so a crash between end and
	// settle is retried.
	return am.scheduler.ScheduleAuctionSettle(ctx, auctionID, time.Now())
}

// SettleAuction resolves the winner from the bid ledger and records the
// terminal transition. Settling an already-settled auction is a no-op.
func (am *AuctionManager) SettleAuction(ctx context.Context, auctionID string) error {
	auction, err := am.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction.Status == domain.AuctionSettled {
		return nil
	}

	winnerID := ""
	highest, err := am.bidRepo.GetHighestBid(ctx, auctionID)
	if err != nil && !errors.Is(err, domain.ErrNoWinner) {
		return err
	}
	if highest != nil {
		winnerID = highest.BidderID
	}

	if err := engine.Transition(auction, domain.AuctionSettled); err != nil {
		return err
	}

	am.log.Info("Settling auction", "auction_id", auctionID, "winner_id", winnerID)

	if winnerID != "" {
		if err := am.auctionRepo.RecordWinner(ctx, auctionID, winnerID); err != nil {
			return err
		}
	}
	if err := am.auctionRepo.UpdateAuctionStatus(ctx, auctionID, domain.AuctionSettled); err != nil {
		return err
	}
	if err := am.stateCache.SetAuctionStatus(ctx, auctionID, domain.AuctionSettled); err != nil {
		return err
	}

	event := &domain.BidEvent{
		Type:      domain.AuctionDone,
		AuctionID: auctionID,
		BidderID:  winnerID,
		Timestamp: time.Now(),
	}
	if highest != nil {
		event.Amount = highest.Amount
	}
	return am.eventPub.PublishBidEvent(ctx, event)
}
