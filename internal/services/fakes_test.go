package services

import (
	"context"
	"sync"
	"time"

	"auction-engine/internal/domain"
)

type memAuctionRepo struct {
	mu       sync.Mutex
	auctions map[string]*domain.Auction
}

func newMemAuctionRepo() *memAuctionRepo {
	return &memAuctionRepo{auctions: make(map[string]*domain.Auction)}
}

func (r *memAuctionRepo) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := *auction
	r.auctions[auction.ID] = &a
	return nil
}

func (r *memAuctionRepo) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.auctions[auctionID]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *memAuctionRepo) UpdateAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.auctions[auctionID]; ok {
		a.Status = status
		a.UpdatedAt = time.Now()
	}
	return nil
}

func (r *memAuctionRepo) UpdateCurrentPrice(ctx context.Context, auctionID string, price float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.auctions[auctionID]; ok {
		a.CurrentPrice = price
	}
	return nil
}

func (r *memAuctionRepo) RecordWinner(ctx context.Context, auctionID, winnerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.auctions[auctionID]; ok {
		a.WinnerID = winnerID
	}
	return nil
}

func (r *memAuctionRepo) GetActiveAuctions(ctx context.Context) ([]*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Auction
	for _, a := range r.auctions {
		if a.Status == domain.AuctionActive {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memBidRepo struct {
	mu   sync.Mutex
	bids map[string][]*domain.Bid
}

func newMemBidRepo() *memBidRepo {
	return &memBidRepo{bids: make(map[string][]*domain.Bid)}
}

func (r *memBidRepo) AppendBid(ctx context.Context, bid *domain.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := *bid
	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], &b)
	return nil
}

func (r *memBidRepo) GetBidHistory(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	history := make([]*domain.Bid, len(r.bids[auctionID]))
	for i, b := range r.bids[auctionID] {
		copied := *b
		history[i] = &copied
	}
	return history, nil
}

func (r *memBidRepo) GetHighestBid(ctx context.Context, auctionID string) (*domain.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bids := r.bids[auctionID]
	if len(bids) == 0 {
		return nil, domain.ErrNoWinner
	}
	best := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > best.Amount {
			best = b
		} else if b.Amount == best.Amount && b.PlacedAt.Before(best.PlacedAt) {
			best = b
		}
	}
	copied := *best
	return &copied, nil
}

type memStateCache struct {
	mu     sync.Mutex
	status map[string]domain.AuctionStatus
}

func newMemStateCache() *memStateCache {
	return &memStateCache{status: make(map[string]domain.AuctionStatus)}
}

func (c *memStateCache) SetAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status[auctionID] = status
	return nil
}

func (c *memStateCache) GetAuctionStatus(ctx context.Context, auctionID string) (domain.AuctionStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status[auctionID], nil
}

type memPriceCache struct {
	mu     sync.Mutex
	prices map[string]*domain.CachedPrice
}

func newMemPriceCache() *memPriceCache {
	return &memPriceCache{prices: make(map[string]*domain.CachedPrice)}
}

func (c *memPriceCache) InitializeAuction(ctx context.Context, auctionID string, startingPrice, bidIncrement float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[auctionID] = &domain.CachedPrice{
		AuctionID:    auctionID,
		CurrentPrice: startingPrice,
		BidIncrement: bidIncrement,
		LastUpdated:  time.Now(),
	}
	return nil
}

func (c *memPriceCache) SetCurrentBid(ctx context.Context, auctionID, bidderID string, amount float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.prices[auctionID]; ok {
		p.CurrentPrice = amount
		p.BidderID = bidderID
		p.LastUpdated = time.Now()
	}
	return nil
}

func (c *memPriceCache) GetCurrentBid(ctx context.Context, auctionID string) (*domain.CachedPrice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.prices[auctionID]; ok {
		copied := *p
		return &copied, nil
	}
	return &domain.CachedPrice{AuctionID: auctionID}, nil
}

type memEventPublisher struct {
	mu     sync.Mutex
	events []*domain.BidEvent
}

func (p *memEventPublisher) PublishBidEvent(ctx context.Context, event *domain.BidEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	e := *event
	p.events = append(p.events, &e)
	return nil
}

func (p *memEventPublisher) eventTypes() []domain.BidEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]domain.BidEventType, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

type memScheduler struct {
	mu   sync.Mutex
	jobs []*domain.ScheduledJob
}

func (s *memScheduler) ScheduleAuctionStart(ctx context.Context, auctionID string, startTime time.Time) error {
	return s.record(auctionID, domain.JobStartAuction, startTime)
}

func (s *memScheduler) ScheduleAuctionEnd(ctx context.Context, auctionID string, endTime time.Time) error {
	return s.record(auctionID, domain.JobEndAuction, endTime)
}

func (s *memScheduler) ScheduleAuctionSettle(ctx context.Context, auctionID string, runAt time.Time) error {
	return s.record(auctionID, domain.JobSettleAuction, runAt)
}

func (s *memScheduler) CancelSchedule(ctx context.Context, auctionID string) error {
	return nil
}

func (s *memScheduler) Start(ctx context.Context) error { return nil }
func (s *memScheduler) Stop() error                     { return nil }

func (s *memScheduler) record(auctionID string, jobType domain.JobType, runAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &domain.ScheduledJob{
		AuctionID: auctionID,
		JobType:   jobType,
		RunAt:     runAt,
		Status:    domain.JobPending,
	})
	return nil
}

func (s *memScheduler) jobTypes() []domain.JobType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]domain.JobType, len(s.jobs))
	for i, j := range s.jobs {
		types[i] = j.JobType
	}
	return types
}

type alwaysLeader struct{}

func (alwaysLeader) BecomeLeader(ctx context.Context, instanceID string) (bool, error) {
	return true, nil
}
func (alwaysLeader) IsLeader(ctx context.Context, instanceID string) (bool, error) {
	return true, nil
}
func (alwaysLeader) ReleaseLeadership(ctx context.Context, instanceID string) error {
	return nil
}
