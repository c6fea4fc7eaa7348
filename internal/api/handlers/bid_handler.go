package handlers

import (
	"fmt"
	"net/http"
	"time"

	"auction-engine/internal/domain"
	"auction-engine/internal/services"
	"auction-engine/pkg/logger"

	"github.com/labstack/echo/v4"
)

type BidHandler struct {
	bidService     *services.BidService
	auctionManager *services.AuctionManager
	log            logger.Logger
}

func NewBidHandler(bidService *services.BidService, auctionManager *services.AuctionManager,
	log logger.Logger) *BidHandler {
	return &BidHandler{
		bidService:     bidService,
		auctionManager: auctionManager,
		log:            log,
	}
}

type PlaceBidRequest struct {
	BidderID string  `json:"bidder_id"`
	Amount   float64 `json:"amount"`
}

type BidResponse struct {
	BidID     string    `json:"bid_id"`
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    float64   `json:"amount"`
	PlacedAt  time.Time `json:"placed_at"`
}

func (h *BidHandler) PlaceBid(c echo.Context) error {
	auctionID := c.Param("id")

	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.BidderID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bidder_id required"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Amount must be positive"})
	}

	bid, err := h.bidService.PlaceBid(c.Request().Context(), auctionID, req.BidderID, req.Amount)
	if err != nil {
		return auctionError(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, bidView(bid))
}

// BuyNow places a bid at exactly the buy-now price, which ends the
// auction immediately on acceptance.
func (h *BidHandler) BuyNow(c echo.Context) error {
	auctionID := c.Param("id")

	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.BidderID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bidder_id required"})
	}

	auction, err := h.auctionManager.GetAuction(c.Request().Context(), auctionID)
	if err != nil {
		return auctionError(c, h.log, err)
	}
	if !auction.HasBuyNow() {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Auction has no buy-now price"})
	}

	bid, err := h.bidService.PlaceBid(c.Request().Context(), auctionID, req.BidderID, auction.BuyNowPrice)
	if err != nil {
		return auctionError(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, bidView(bid))
}

func bidView(b *domain.Bid) BidResponse {
	return BidResponse{
		BidID:     b.ID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		PlacedAt:  b.PlacedAt,
	}
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
