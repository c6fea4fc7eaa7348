package domain

import (
	"time"
)

type Auction struct {
	ID            string
	Title         string
	SellerID      string
	StartingPrice float64
	CurrentPrice  float64
	BuyNowPrice   float64 // 0 means no buy-now option
	BidIncrement  float64
	StartTime     time.Time
	EndTime       time.Time
	Status        AuctionStatus
	WinnerID      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasBuyNow reports whether the auction offers an immediate-win price.
func (a *Auction) HasBuyNow() bool {
	return a.BuyNowPrice > 0
}

// MinNextBid is the lowest amount the next bid may carry.
func (a *Auction) MinNextBid() float64 {
	return a.CurrentPrice + a.BidIncrement
}

type AuctionStatus int

const (
	AuctionScheduled AuctionStatus = iota
	AuctionActive
	AuctionEnded
	AuctionSettled
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionScheduled:
		return "scheduled"
	case AuctionActive:
		return "active"
	case AuctionEnded:
		return "ended"
	case AuctionSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Bid is immutable once accepted; the ledger only ever appends.
type Bid struct {
	ID        string
	AuctionID string
	BidderID  string
	Amount    float64
	PlacedAt  time.Time
}

type BidEvent struct {
	Type      BidEventType `json:"type"`
	AuctionID string       `json:"auction_id"`
	BidderID  string       `json:"bidder_id"`
	Amount    float64      `json:"amount"`
	Timestamp time.Time    `json:"timestamp"`
}

type BidEventType string

const (
	BidAccepted    BidEventType = "bid_accepted"
	BidRejected    BidEventType = "bid_rejected"
	AuctionClosed  BidEventType = "auction_ended"
	AuctionDone    BidEventType = "auction_settled"
	AuctionStarted BidEventType = "auction_started"
)

type ScheduledJob struct {
	ID        string
	AuctionID string
	JobType   JobType
	RunAt     time.Time
	Status    JobStatus
	CreatedAt time.Time
}

type JobType string

const (
	JobStartAuction  JobType = "start_auction"
	JobEndAuction    JobType = "end_auction"
	JobSettleAuction JobType = "settle_auction"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobExecuted  JobStatus = "executed"
	JobCancelled JobStatus = "cancelled"
)
