package engine

import (
	"errors"

	"auction-engine/internal/domain"
)

// ErrBidNotHigher rejects an append that does not strictly raise the
// ledger's highest amount.
var ErrBidNotHigher = errors.New("bid amount must exceed the current highest bid")

// Ledger is the append-only ordered history of accepted bids for one
// auction. Bids are never edited or removed once confirmed; the only
// retraction path is Truncate, used to discard optimistic entries the
// backend rejected.
type Ledger struct {
	startingPrice float64
	bids          []domain.Bid
}

// NewLedger seeds a ledger from backend-confirmed history, assumed to
// be in placedAt order. The seed is authoritative and not re-validated.
func NewLedger(startingPrice float64, history ...domain.Bid) *Ledger {
	bids := make([]domain.Bid, len(history))
	copy(bids, history)
	return &Ledger{startingPrice: startingPrice, bids: bids}
}

// Append records an accepted bid. The amount must strictly exceed the
// current maximum.
func (l *Ledger) Append(bid domain.Bid) error {
	if len(l.bids) > 0 && bid.Amount <= l.highest().Amount {
		return ErrBidNotHigher
	}
	l.bids = append(l.bids, bid)
	return nil
}

// CurrentPrice is the amount of the most recent bid, or the starting
// price when no bids have been placed.
func (l *Ledger) CurrentPrice() float64 {
	if len(l.bids) == 0 {
		return l.startingPrice
	}
	return l.bids[len(l.bids)-1].Amount
}

// HighestBidder is the bidder holding the current price, or "" when the
// ledger is empty.
func (l *Ledger) HighestBidder() string {
	if len(l.bids) == 0 {
		return ""
	}
	return l.highest().BidderID
}

// Winner resolves the highest-amount bid, tie-broken by earliest
// placedAt. Callers consult it only once the auction is ended or
// settled; an empty ledger yields ErrNoWinner.
func (l *Ledger) Winner() (domain.Bid, error) {
	if len(l.bids) == 0 {
		return domain.Bid{}, domain.ErrNoWinner
	}
	return *l.highest(), nil
}

// History returns the bid sequence most-recent-first for display. The
// internal storage order is untouched.
func (l *Ledger) History() []domain.Bid {
	out := make([]domain.Bid, len(l.bids))
	for i, b := range l.bids {
		out[len(l.bids)-1-i] = b
	}
	return out
}

// Len is the number of accepted bids.
func (l *Ledger) Len() int {
	return len(l.bids)
}

// Truncate drops entries past n, rolling back optimistic appends after
// a backend rejection.
func (l *Ledger) Truncate(n int) {
	if n < 0 || n >= len(l.bids) {
		return
	}
	l.bids = l.bids[:n]
}

func (l *Ledger) highest() *domain.Bid {
	best := &l.bids[0]
	for i := 1; i < len(l.bids); i++ {
		b := &l.bids[i]
		// Strictly greater: on equal amounts the earlier bid keeps the lead.
		if b.Amount > best.Amount {
			best = b
		} else if b.Amount == best.Amount && b.PlacedAt.Before(best.PlacedAt) {
			best = b
		}
	}
	return best
}
