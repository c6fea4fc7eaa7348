package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-engine/internal/domain"
)

func windowAuction(status domain.AuctionStatus) *domain.Auction {
	return &domain.Auction{
		ID:        "auction-1",
		StartTime: time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC),
		Status:    status,
	}
}

func TestTransition_LegalPath(t *testing.T) {
	a := windowAuction(domain.AuctionScheduled)

	require.NoError(t, Transition(a, domain.AuctionActive))
	assert.Equal(t, domain.AuctionActive, a.Status)

	require.NoError(t, Transition(a, domain.AuctionEnded))
	assert.Equal(t, domain.AuctionEnded, a.Status)

	require.NoError(t, Transition(a, domain.AuctionSettled))
	assert.Equal(t, domain.AuctionSettled, a.Status)
}

func TestTransition_SettleTwiceIsNoOp(t *testing.T) {
	a := windowAuction(domain.AuctionSettled)

	assert.NoError(t, Transition(a, domain.AuctionSettled))
	assert.Equal(t, domain.AuctionSettled, a.Status)
}

func TestTransition_IllegalMovesFail(t *testing.T) {
	cases := []struct {
		from, to domain.AuctionStatus
	}{
		{domain.AuctionScheduled, domain.AuctionEnded},
		{domain.AuctionScheduled, domain.AuctionSettled},
		{domain.AuctionActive, domain.AuctionScheduled},
		{domain.AuctionActive, domain.AuctionSettled},
		{domain.AuctionEnded, domain.AuctionActive},
		{domain.AuctionSettled, domain.AuctionActive},
		{domain.AuctionSettled, domain.AuctionEnded},
	}

	for _, tc := range cases {
		a := windowAuction(tc.from)
		err := Transition(a, tc.to)

		var invalid *domain.InvalidTransitionError
		require.ErrorAs(t, err, &invalid, "%s -> %s should be illegal", tc.from, tc.to)
		assert.Equal(t, tc.from, invalid.From)
		assert.Equal(t, tc.to, invalid.To)
		assert.Equal(t, tc.from, a.Status, "status must not change on a failed transition")
	}
}

func TestStatusAt_DerivedFromWindow(t *testing.T) {
	a := windowAuction(domain.AuctionScheduled)

	assert.Equal(t, domain.AuctionScheduled, StatusAt(a, a.StartTime.Add(-time.Minute)))
	assert.Equal(t, domain.AuctionActive, StatusAt(a, a.StartTime))
	assert.Equal(t, domain.AuctionActive, StatusAt(a, a.EndTime.Add(-time.Second)))
	assert.Equal(t, domain.AuctionEnded, StatusAt(a, a.EndTime))
}

func TestAdvance_MovesThroughWindow(t *testing.T) {
	a := windowAuction(domain.AuctionScheduled)

	assert.False(t, Advance(a, a.StartTime.Add(-time.Hour)))
	assert.Equal(t, domain.AuctionScheduled, a.Status)

	assert.True(t, Advance(a, a.StartTime))
	assert.Equal(t, domain.AuctionActive, a.Status)

	assert.False(t, Advance(a, a.EndTime.Add(-time.Second)))
	assert.Equal(t, domain.AuctionActive, a.Status)

	assert.True(t, Advance(a, a.EndTime))
	assert.Equal(t, domain.AuctionEnded, a.Status)
}

func TestAdvance_SkipsStraightToEndedWhenLate(t *testing.T) {
	// A scheduled auction observed long after its window closes passes
	// through active on the way to ended.
	a := windowAuction(domain.AuctionScheduled)

	assert.True(t, Advance(a, a.EndTime.Add(time.Hour)))
	assert.Equal(t, domain.AuctionEnded, a.Status)
}

func TestAdvance_TerminalStatesStay(t *testing.T) {
	for _, status := range []domain.AuctionStatus{domain.AuctionEnded, domain.AuctionSettled} {
		a := windowAuction(status)
		assert.False(t, Advance(a, a.EndTime.Add(time.Hour)))
		assert.Equal(t, status, a.Status)
	}
}
