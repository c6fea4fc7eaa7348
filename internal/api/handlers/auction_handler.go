package handlers

import (
	"errors"
	"net/http"
	"time"

	"auction-engine/internal/domain"
	"auction-engine/internal/engine"
	"auction-engine/internal/services"
	"auction-engine/pkg/logger"

	"github.com/labstack/echo/v4"
)

type AuctionHandler struct {
	auctionManager *services.AuctionManager
	bidService     *services.BidService
	log            logger.Logger
}

func NewAuctionHandler(auctionManager *services.AuctionManager, bidService *services.BidService,
	log logger.Logger) *AuctionHandler {
	return &AuctionHandler{
		auctionManager: auctionManager,
		bidService:     bidService,
		log:            log,
	}
}

type CreateAuctionRequest struct {
	Title         string    `json:"title"`
	SellerID      string    `json:"seller_id"`
	StartingPrice float64   `json:"starting_price"`
	BuyNowPrice   float64   `json:"buy_now_price,omitempty"`
	BidIncrement  float64   `json:"bid_increment"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

type AuctionResponse struct {
	AuctionID     string    `json:"auction_id"`
	Title         string    `json:"title"`
	SellerID      string    `json:"seller_id"`
	StartingPrice float64   `json:"starting_price"`
	CurrentPrice  float64   `json:"current_price"`
	BuyNowPrice   float64   `json:"buy_now_price,omitempty"`
	BidIncrement  float64   `json:"bid_increment"`
	MinNextBid    float64   `json:"min_next_bid"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	WinnerID      string    `json:"winner_id,omitempty"`

	RemainingSeconds int64  `json:"remaining_seconds"`
	RemainingLabel   string `json:"remaining_label"`
	IsExpired        bool   `json:"is_expired"`
}

func (h *AuctionHandler) CreateAuction(c echo.Context) error {
	var req CreateAuctionRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	auction, err := h.auctionManager.CreateAuction(c.Request().Context(), services.CreateAuctionParams{
		Title:         req.Title,
		SellerID:      req.SellerID,
		StartingPrice: req.StartingPrice,
		BuyNowPrice:   req.BuyNowPrice,
		BidIncrement:  req.BidIncrement,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
	})
	if err != nil {
		h.log.Error("Failed to create auction", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	h.log.Info("Auction created successfully", "auction_id", auction.ID)
	return c.JSON(http.StatusCreated, auctionView(auction, time.Now()))
}

func (h *AuctionHandler) GetAuction(c echo.Context) error {
	auctionID := c.Param("id")

	auction, err := h.auctionManager.GetAuction(c.Request().Context(), auctionID)
	if err != nil {
		return auctionError(c, h.log, err)
	}

	now := time.Now()
	engine.Advance(auction, now)
	return c.JSON(http.StatusOK, auctionView(auction, now))
}

func (h *AuctionHandler) GetBidHistory(c echo.Context) error {
	auctionID := c.Param("id")

	history, err := h.bidService.BidHistory(c.Request().Context(), auctionID)
	if err != nil {
		return auctionError(c, h.log, err)
	}

	bids := make([]BidResponse, len(history))
	for i, b := range history {
		bids[i] = bidView(b)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"auction_id": auctionID,
		"bids":       bids,
	})
}

func (h *AuctionHandler) GetWinner(c echo.Context) error {
	auctionID := c.Param("id")

	auction, err := h.auctionManager.GetAuction(c.Request().Context(), auctionID)
	if err != nil {
		return auctionError(c, h.log, err)
	}

	// The end job may not have fired yet; judge the window directly so
	// this endpoint agrees with GetAuction.
	engine.Advance(auction, time.Now())

	if auction.Status != domain.AuctionEnded && auction.Status != domain.AuctionSettled {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Auction has not ended yet"})
	}
	if auction.WinnerID == "" {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"auction_id": auctionID,
			"winner_id":  nil,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"auction_id":    auctionID,
		"winner_id":     auction.WinnerID,
		"winning_price": auction.CurrentPrice,
	})
}

func auctionView(a *domain.Auction, now time.Time) AuctionResponse {
	r := engine.RemainingAt(a.EndTime, now)
	return AuctionResponse{
		AuctionID:        a.ID,
		Title:            a.Title,
		SellerID:         a.SellerID,
		StartingPrice:    a.StartingPrice,
		CurrentPrice:     a.CurrentPrice,
		BuyNowPrice:      a.BuyNowPrice,
		BidIncrement:     a.BidIncrement,
		MinNextBid:       a.MinNextBid(),
		StartTime:        a.StartTime,
		EndTime:          a.EndTime,
		Status:           a.Status.String(),
		WinnerID:         a.WinnerID,
		RemainingSeconds: r.Seconds,
		RemainingLabel:   r.Format(),
		IsExpired:        r.IsExpired,
	}
}

// auctionError maps domain errors onto HTTP responses. Validation
// failures are recovered client-side and rendered inline; an invalid
// transition is an internal defect and never shown as-is.
func auctionError(c echo.Context, log logger.Logger, err error) error {
	var tooLow *domain.BidTooLowError
	var invalid *domain.InvalidTransitionError

	switch {
	case errors.Is(err, domain.ErrAuctionNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Auction not found"})
	case errors.As(err, &tooLow):
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":        "Minimum bid is " + formatAmount(tooLow.Minimum),
			"min_next_bid": tooLow.Minimum,
		})
	case errors.Is(err, domain.ErrAuctionNotActive):
		return c.JSON(http.StatusConflict, map[string]string{"error": "Auction is not currently accepting bids."})
	case errors.Is(err, domain.ErrDuplicateBidder):
		return c.JSON(http.StatusConflict, map[string]string{"error": "You are already the highest bidder."})
	case errors.As(err, &invalid):
		log.Error("Invalid auction transition", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal error"})
	default:
		log.Error("Request failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal error"})
	}
}
