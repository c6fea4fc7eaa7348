package services

import (
	"context"

	"auction-engine/internal/domain"
)

// LocalBackend adapts the in-process services to the narrow Backend
// surface a client-side bid session consumes. A remote deployment
// swaps this for an HTTP client with the same shape.
type LocalBackend struct {
	auctionRepo domain.AuctionRepository
	bidRepo     domain.BidRepository
	bidService  *BidService
}

func NewLocalBackend(auctionRepo domain.AuctionRepository, bidRepo domain.BidRepository,
	bidService *BidService) *LocalBackend {
	return &LocalBackend{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		bidService:  bidService,
	}
}

func (b *LocalBackend) FetchAuction(ctx context.Context, auctionID string) (*domain.Auction, []*domain.Bid, error) {
	auction, err := b.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, nil, err
	}
	history, err := b.bidRepo.GetBidHistory(ctx, auctionID)
	if err != nil {
		return nil, nil, err
	}
	return auction, history, nil
}

func (b *LocalBackend) SubmitBid(ctx context.Context, auctionID, bidderID string, amount float64) (*domain.Bid, error) {
	return b.bidService.PlaceBid(ctx, auctionID, bidderID, amount)
}
