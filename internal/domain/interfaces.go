package domain

import (
	"context"
	"time"
)

// Repository interfaces
type AuctionRepository interface {
	CreateAuction(ctx context.Context, auction *Auction) error
	GetAuction(ctx context.Context, auctionID string) (*Auction, error)
	UpdateAuctionStatus(ctx context.Context, auctionID string, status AuctionStatus) error
	UpdateCurrentPrice(ctx context.Context, auctionID string, price float64) error
	RecordWinner(ctx context.Context, auctionID, winnerID string) error
	GetActiveAuctions(ctx context.Context) ([]*Auction, error)
}

type BidRepository interface {
	AppendBid(ctx context.Context, bid *Bid) error
	GetBidHistory(ctx context.Context, auctionID string) ([]*Bid, error)
	GetHighestBid(ctx context.Context, auctionID string) (*Bid, error)
}

type SchedulerRepository interface {
	CreateJob(ctx context.Context, job *ScheduledJob) error
	GetPendingJobs(ctx context.Context, before time.Time) ([]*ScheduledJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus) error
	CancelJobsForAuction(ctx context.Context, auctionID string) error
}

// Cache interfaces
type PriceCache interface {
	InitializeAuction(ctx context.Context, auctionID string, startingPrice, bidIncrement float64) error
	SetCurrentBid(ctx context.Context, auctionID, bidderID string, amount float64) error
	GetCurrentBid(ctx context.Context, auctionID string) (*CachedPrice, error)
}

type CachedPrice struct {
	AuctionID    string
	CurrentPrice float64
	BidderID     string
	BidIncrement float64
	LastUpdated  time.Time
}

type AuctionStateCache interface {
	SetAuctionStatus(ctx context.Context, auctionID string, status AuctionStatus) error
	GetAuctionStatus(ctx context.Context, auctionID string) (AuctionStatus, error)
}

// Event interfaces
type EventPublisher interface {
	PublishBidEvent(ctx context.Context, event *BidEvent) error
}

type EventSubscriber interface {
	SubscribeToBidEvents(ctx context.Context, handler EventHandler) error
}

type EventHandler func(event *BidEvent) error

// Notification interfaces
type UserNotifier interface {
	NotifyUser(ctx context.Context, userID string, message interface{}) error
}

type AuctionBroadcaster interface {
	BroadcastToAuction(ctx context.Context, auctionID string, message interface{}) error
}

// Leader election interface
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}

// Scheduler interface
type LifecycleScheduler interface {
	ScheduleAuctionStart(ctx context.Context, auctionID string, startTime time.Time) error
	ScheduleAuctionEnd(ctx context.Context, auctionID string, endTime time.Time) error
	ScheduleAuctionSettle(ctx context.Context, auctionID string, runAt time.Time) error
	CancelSchedule(ctx context.Context, auctionID string) error
	Start(ctx context.Context) error
	Stop() error
}

// Backend is the narrow surface a client-side bid session talks to.
// In local/demo mode the services in this repo are the authority; a
// remote deployment substitutes an HTTP client with the same shape.
type Backend interface {
	FetchAuction(ctx context.Context, auctionID string) (*Auction, []*Bid, error)
	SubmitBid(ctx context.Context, auctionID, bidderID string, amount float64) (*Bid, error)
}

// WebSocket interfaces
type WebSocketConnection interface {
	Send(message interface{}) error
	Close() error
	UserID() string
	AuctionID() string
}

type ConnectionManager interface {
	RegisterConnection(userID, auctionID string, conn WebSocketConnection) error
	UnregisterConnection(userID, auctionID string) error
	GetConnectionsForAuction(auctionID string) []WebSocketConnection
	BroadcastToAuction(auctionID string, message interface{}) error
	NotifyUser(userID string, message interface{}) error
	CloseAndUnregisterConnections(auctionID string) error
}
