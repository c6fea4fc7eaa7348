package engine

import (
	"time"

	"auction-engine/internal/domain"
	"auction-engine/pkg/utils"
)

// ValidateBid decides whether a proposed bid may be applied. Checks run
// in order and the first failure wins:
//
//  1. the auction must be active
//  2. the amount must reach currentPrice + bidIncrement
//  3. the proposer must not already be the highest bidder
//
// On success it returns an accepted Bid value stamped with the supplied
// now; the bid is not appended anywhere and the auction is not mutated.
func ValidateBid(a *domain.Auction, highestBidder, bidderID string, amount float64, now time.Time) (*domain.Bid, error) {
	if a.Status != domain.AuctionActive {
		return nil, domain.ErrAuctionNotActive
	}

	if min := a.MinNextBid(); amount < min {
		return nil, &domain.BidTooLowError{Amount: amount, Minimum: min}
	}

	if highestBidder != "" && bidderID == highestBidder {
		return nil, domain.ErrDuplicateBidder
	}

	return &domain.Bid{
		ID:        utils.GenerateID("bid"),
		AuctionID: a.ID,
		BidderID:  bidderID,
		Amount:    amount,
		PlacedAt:  now,
	}, nil
}
