package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-engine/internal/domain"
	"auction-engine/internal/engine"
	"auction-engine/pkg/logger"
)

// Runs a client session against the in-process services, end to end.
func TestLocalBackend_SessionRoundTrip(t *testing.T) {
	f, auction := newBidFixture(t, -time.Minute)
	backend := NewLocalBackend(f.auctionRepo, f.bidRepo, f.bidService)

	alice, err := engine.NewSession(context.Background(), backend, auction.ID, "alice", logger.NewNop())
	require.NoError(t, err)

	snap := alice.Snapshot()
	assert.Equal(t, 25.00, snap.CurrentPrice)
	assert.Equal(t, 26.00, snap.MinNextBid)
	assert.Equal(t, "active", snap.Status)

	bid, err := alice.SubmitBid(context.Background(), 26.00)
	require.NoError(t, err)
	assert.Equal(t, 26.00, bid.Amount)

	// The confirmed bid is the one the server stamped and persisted.
	stored, _ := f.auctionRepo.GetAuction(context.Background(), auction.ID)
	assert.Equal(t, 26.00, stored.CurrentPrice)

	// A second session picks up alice's bid from history.
	bob, err := engine.NewSession(context.Background(), backend, auction.ID, "bob", logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 27.00, bob.Snapshot().MinNextBid)

	// Bob's too-low bid is rejected locally; the server never sees it.
	_, err = bob.SubmitBid(context.Background(), 26.50)
	var tooLow *domain.BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	assert.Equal(t, 27.00, tooLow.Minimum)

	_, err = bob.SubmitBid(context.Background(), 27.00)
	require.NoError(t, err)
	assert.Equal(t, 28.00, bob.Snapshot().MinNextBid)
}

func TestLocalBackend_BuyNowPropagatesToSession(t *testing.T) {
	f, auction := newBidFixture(t, -time.Minute)
	backend := NewLocalBackend(f.auctionRepo, f.bidRepo, f.bidService)

	s, err := engine.NewSession(context.Background(), backend, auction.ID, "alice", logger.NewNop())
	require.NoError(t, err)

	_, err = s.SubmitBid(context.Background(), 45.00)
	require.NoError(t, err)
	assert.Equal(t, "ended", s.Snapshot().Status)

	// The server side settled on the spot.
	stored, _ := f.auctionRepo.GetAuction(context.Background(), auction.ID)
	assert.Equal(t, domain.AuctionSettled, stored.Status)
	assert.Equal(t, "alice", stored.WinnerID)

	winner, err := s.Settle()
	require.NoError(t, err)
	assert.Equal(t, "alice", winner)
}

func TestLocalBackend_ServerRejectionRollsBackSession(t *testing.T) {
	f, auction := newBidFixture(t, -time.Minute)
	backend := NewLocalBackend(f.auctionRepo, f.bidRepo, f.bidService)

	s, err := engine.NewSession(context.Background(), backend, auction.ID, "alice", logger.NewNop())
	require.NoError(t, err)

	// Someone else outbids through the server while alice's view is stale.
	_, err = f.bidService.PlaceBid(context.Background(), auction.ID, "bob", 30.00)
	require.NoError(t, err)

	// Alice's 26.00 passes her stale local check but the server rejects
	// it, and her optimistic entry is rolled back.
	_, err = s.SubmitBid(context.Background(), 26.00)
	var tooLow *domain.BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	assert.Equal(t, 31.00, tooLow.Minimum)
	assert.Equal(t, 25.00, s.Snapshot().CurrentPrice)
	assert.Empty(t, s.History())
}
