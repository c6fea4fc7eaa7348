package engine

import (
	"time"

	"auction-engine/internal/domain"
)

// The state machine is the single authority for auction status. All
// status mutations in this repo flow through the functions below.
//
// Legal transitions:
//
//	scheduled -> active   (now >= startTime)
//	active    -> ended    (now >= endTime, or an accepted buy-now bid)
//	ended     -> settled  (explicit, after winner resolution; idempotent)

func transitionAllowed(from, to domain.AuctionStatus) bool {
	switch from {
	case domain.AuctionScheduled:
		return to == domain.AuctionActive
	case domain.AuctionActive:
		return to == domain.AuctionEnded
	case domain.AuctionEnded:
		return to == domain.AuctionSettled
	default:
		return false
	}
}

// Transition moves the auction to the target status or fails with an
// InvalidTransitionError. Settling an already-settled auction is the
// one sanctioned no-op.
func Transition(a *domain.Auction, to domain.AuctionStatus) error {
	if a.Status == domain.AuctionSettled && to == domain.AuctionSettled {
		return nil
	}
	if !transitionAllowed(a.Status, to) {
		return &domain.InvalidTransitionError{From: a.Status, To: to}
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	return nil
}

// StatusAt derives the time-based status for an auction's window. It
// never yields settled; settlement is an explicit transition.
func StatusAt(a *domain.Auction, now time.Time) domain.AuctionStatus {
	switch {
	case now.Before(a.StartTime):
		return domain.AuctionScheduled
	case now.Before(a.EndTime):
		return domain.AuctionActive
	default:
		return domain.AuctionEnded
	}
}

// Advance applies any time-based transitions due at now and reports
// whether the status changed. Ended and settled auctions never move
// again on the clock.
func Advance(a *domain.Auction, now time.Time) bool {
	if a.Status == domain.AuctionEnded || a.Status == domain.AuctionSettled {
		return false
	}

	changed := false
	if a.Status == domain.AuctionScheduled && !now.Before(a.StartTime) {
		if err := Transition(a, domain.AuctionActive); err != nil {
			return changed
		}
		changed = true
	}
	if a.Status == domain.AuctionActive && !now.Before(a.EndTime) {
		if err := Transition(a, domain.AuctionEnded); err != nil {
			return changed
		}
		changed = true
	}
	return changed
}
