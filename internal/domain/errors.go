package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuctionNotActive rejects bids placed outside the active window.
	ErrAuctionNotActive = errors.New("auction is not currently accepting bids")

	// ErrDuplicateBidder rejects a bid from the current highest bidder.
	ErrDuplicateBidder = errors.New("you are already the highest bidder")

	// ErrNetworkFailure is surfaced after the single automatic retry fails.
	ErrNetworkFailure = errors.New("could not place bid, please try again")

	// ErrNoWinner means the auction ended without a single accepted bid.
	ErrNoWinner = errors.New("auction has no winner")

	// ErrBidInFlight enforces at most one pending submission per session.
	ErrBidInFlight = errors.New("a bid is already being placed")

	ErrAuctionNotFound = errors.New("auction not found")
)

// BidTooLowError carries the minimum acceptable amount so callers can
// present it next to the bid form.
type BidTooLowError struct {
	Amount  float64
	Minimum float64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("minimum bid is %.2f", e.Minimum)
}

// InvalidTransitionError is an internal defect, never user-facing.
type InvalidTransitionError struct {
	From AuctionStatus
	To   AuctionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid auction transition %s -> %s", e.From, e.To)
}
