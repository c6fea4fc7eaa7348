package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"auction-engine/internal/domain"
	"auction-engine/pkg/logger"
)

// Snapshot is the read-only view the engine exposes to the rendering
// layer.
type Snapshot struct {
	AuctionID        string  `json:"auction_id"`
	RemainingSeconds int64   `json:"remaining_seconds"`
	RemainingLabel   string  `json:"remaining_label"`
	IsExpired        bool    `json:"is_expired"`
	CurrentPrice     float64 `json:"current_price"`
	MinNextBid       float64 `json:"min_next_bid"`
	Status           string  `json:"status"`
	WinnerID         string  `json:"winner_id,omitempty"`
}

// Session drives one auction for one bidder: it owns the auction's
// ledger and status for the session's lifetime, applies time-based
// transitions on Tick, and submits bids optimistically against the
// backend. The auction object is exclusively owned here; nothing else
// mutates its price or status.
type Session struct {
	mu       sync.Mutex
	auction  *domain.Auction
	ledger   *Ledger
	backend  domain.Backend
	bidderID string
	now      func() time.Time
	log      logger.Logger

	confirmed int // ledger length the backend has acknowledged
	inFlight  bool
}

type SessionOption func(*Session)

// WithSessionNow overrides the wall-clock read, for tests.
func WithSessionNow(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession fetches the auction and its bid history from the backend
// and derives the initial status from the auction's time window.
func NewSession(ctx context.Context, backend domain.Backend, auctionID, bidderID string, log logger.Logger, opts ...SessionOption) (*Session, error) {
	s := &Session{
		backend:  backend,
		bidderID: bidderID,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}

	auction, history, err := backend.FetchAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	bids := make([]domain.Bid, len(history))
	for i, b := range history {
		bids[i] = *b
	}

	s.auction = auction
	s.ledger = NewLedger(auction.StartingPrice, bids...)
	s.confirmed = s.ledger.Len()
	s.auction.CurrentPrice = s.ledger.CurrentPrice()

	// The window only decides scheduled/active/ended for auctions still
	// running. Terminal statuses from the backend stand: a buy-now bid
	// ends an auction before its endTime passes.
	switch s.auction.Status {
	case domain.AuctionScheduled, domain.AuctionActive:
		s.auction.Status = StatusAt(s.auction, s.now())
	}
	return s, nil
}

// Tick advances the state machine to now and returns a fresh snapshot.
// It is the clock's entry point into the session.
func (s *Session) Tick(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	Advance(s.auction, now)
	return s.snapshotLocked(now)
}

// Snapshot returns the current view state without advancing time.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(s.now())
}

// CanBid reports whether amount would pass validation right now.
func (s *Session) CanBid(amount float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := ValidateBid(s.auction, s.ledger.HighestBidder(), s.bidderID, amount, s.now())
	return err == nil
}

// SubmitBid validates the amount, applies it optimistically, and
// confirms it with the backend. The optimistic entry is rolled back on
// rejection; a transient backend failure is retried exactly once before
// surfacing ErrNetworkFailure. At most one submission may be in flight
// per session.
func (s *Session) SubmitBid(ctx context.Context, amount float64) (*domain.Bid, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, domain.ErrBidInFlight
	}

	now := s.now()
	Advance(s.auction, now)

	proposed, err := ValidateBid(s.auction, s.ledger.HighestBidder(), s.bidderID, amount, now)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	if err := s.ledger.Append(*proposed); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.auction.CurrentPrice = s.ledger.CurrentPrice()
	s.inFlight = true
	auctionID := s.auction.ID
	s.mu.Unlock()

	confirmed, err := s.submitWithRetry(ctx, auctionID, amount)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if err != nil {
		// Roll back to the last backend-confirmed entry.
		s.ledger.Truncate(s.confirmed)
		s.auction.CurrentPrice = s.ledger.CurrentPrice()
		return nil, err
	}

	// Replace the proposed entry with the backend's echo; its placedAt
	// is authoritative.
	s.ledger.Truncate(s.confirmed)
	if err := s.ledger.Append(*confirmed); err != nil {
		s.log.Error("Confirmed bid conflicts with local ledger",
			"auction_id", auctionID, "amount", confirmed.Amount, "error", err)
		s.auction.CurrentPrice = s.ledger.CurrentPrice()
		return nil, err
	}
	s.confirmed = s.ledger.Len()
	s.auction.CurrentPrice = s.ledger.CurrentPrice()

	if s.auction.HasBuyNow() && confirmed.Amount >= s.auction.BuyNowPrice {
		if err := Transition(s.auction, domain.AuctionEnded); err != nil {
			s.log.Error("Buy-now end transition failed", "auction_id", auctionID, "error", err)
		}
	}
	return confirmed, nil
}

// Settle resolves the winner once the auction has ended and moves it to
// settled. Settling twice yields the same winner without error.
func (s *Session) Settle() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.auction.Status == domain.AuctionSettled {
		return s.auction.WinnerID, nil
	}

	winner, err := s.ledger.Winner()
	if err != nil {
		if errors.Is(err, domain.ErrNoWinner) {
			if terr := Transition(s.auction, domain.AuctionSettled); terr != nil {
				return "", terr
			}
			return "", nil
		}
		return "", err
	}

	if err := Transition(s.auction, domain.AuctionSettled); err != nil {
		return "", err
	}
	s.auction.WinnerID = winner.BidderID
	return winner.BidderID, nil
}

// History exposes the ledger most-recent-first for display.
func (s *Session) History() []domain.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.History()
}

func (s *Session) submitWithRetry(ctx context.Context, auctionID string, amount float64) (*domain.Bid, error) {
	bid, err := s.backend.SubmitBid(ctx, auctionID, s.bidderID, amount)
	if err == nil {
		return bid, nil
	}
	if isRejection(err) {
		return nil, err
	}

	s.log.Warn("Bid submission failed, retrying once", "auction_id", auctionID, "error", err)
	bid, err = s.backend.SubmitBid(ctx, auctionID, s.bidderID, amount)
	if err == nil {
		return bid, nil
	}
	if isRejection(err) {
		return nil, err
	}
	return nil, domain.ErrNetworkFailure
}

// isRejection separates authoritative backend rejections, which roll
// back immediately, from transport failures, which earn one retry.
func isRejection(err error) bool {
	var tooLow *domain.BidTooLowError
	return errors.Is(err, domain.ErrAuctionNotActive) ||
		errors.Is(err, domain.ErrDuplicateBidder) ||
		errors.Is(err, domain.ErrAuctionNotFound) ||
		errors.As(err, &tooLow)
}

func (s *Session) snapshotLocked(now time.Time) Snapshot {
	r := RemainingAt(s.auction.EndTime, now)
	return Snapshot{
		AuctionID:        s.auction.ID,
		RemainingSeconds: r.Seconds,
		RemainingLabel:   r.Format(),
		IsExpired:        r.IsExpired,
		CurrentPrice:     s.auction.CurrentPrice,
		MinNextBid:       s.auction.MinNextBid(),
		Status:           s.auction.Status.String(),
		WinnerID:         s.auction.WinnerID,
	}
}
