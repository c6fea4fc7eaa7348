package websocket

import (
	"context"
	"errors"
	"net/http"
	"time"

	"auction-engine/internal/domain"
	"auction-engine/internal/engine"
	"auction-engine/internal/services"
	"auction-engine/pkg/logger"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// WebSocketHandler upgrades watcher connections and streams the live
// auction feed: a countdown tick every second plus bid events relayed
// by the event listener.
type WebSocketHandler struct {
	bidService   *services.BidService
	auctionRepo  domain.AuctionRepository
	connManager  domain.ConnectionManager
	tickInterval time.Duration
	log          logger.Logger
}

func NewWebSocketHandler(bidService *services.BidService, auctionRepo domain.AuctionRepository,
	connManager domain.ConnectionManager, tickInterval time.Duration, log logger.Logger) *WebSocketHandler {
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	return &WebSocketHandler{
		bidService:   bidService,
		auctionRepo:  auctionRepo,
		connManager:  connManager,
		tickInterval: tickInterval,
		log:          log,
	}
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request, auctionID string) {
	auction, err := h.auctionRepo.GetAuction(r.Context(), auctionID)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			http.Error(w, "auction not found", http.StatusNotFound)
			return
		}
		h.log.Error("Failed to load auction", "auction_id", auctionID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if time.Now().After(auction.EndTime) {
		http.Error(w, "auction has already ended", http.StatusForbidden)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	wsConn := NewWebSocketConnection(conn, userID, auctionID, h.log)

	if err := h.connManager.RegisterConnection(userID, auctionID, wsConn); err != nil {
		h.log.Error("Failed to register connection", "error", err)
		conn.Close()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Countdown ticks stop on expiry; closing the connection cancels
	// them so no timer leaks past the watcher.
	countdown := engine.NewCountdown(auction.EndTime, func(r engine.Remaining) {
		wsConn.Send(map[string]interface{}{
			"type":              "countdown",
			"auction_id":        auctionID,
			"remaining_seconds": r.Seconds,
			"remaining_label":   r.Format(),
			"is_expired":        r.IsExpired,
		})
	}, engine.WithInterval(h.tickInterval))
	go countdown.Run(ctx)

	go h.readLoop(ctx, cancel, wsConn, countdown)
}

func (h *WebSocketHandler) readLoop(ctx context.Context, cancel context.CancelFunc,
	conn *WebSocketConnection, countdown *engine.Countdown) {
	defer func() {
		cancel()
		countdown.Stop()
		h.connManager.UnregisterConnection(conn.UserID(), conn.AuctionID())
		conn.Close()
	}()

	for {
		var msg map[string]interface{}
		if err := conn.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("Websocket read failed", "user_id", conn.UserID(), "error", err)
			}
			return
		}

		msgType, ok := msg["type"].(string)
		if !ok {
			continue
		}

		switch msgType {
		case "place_bid":
			h.handleBidMessage(ctx, conn, msg)
		case "ping":
			conn.Send(map[string]string{"type": "pong"})
		}
	}
}

func (h *WebSocketHandler) handleBidMessage(ctx context.Context, conn *WebSocketConnection, msg map[string]interface{}) {
	amount, ok := msg["amount"].(float64)
	if !ok || amount <= 0 {
		conn.Send(map[string]string{"type": "error", "message": "invalid amount"})
		return
	}

	bid, err := h.bidService.PlaceBid(ctx, conn.AuctionID(), conn.UserID(), amount)
	if err != nil {
		conn.Send(map[string]interface{}{
			"type":    "bid_rejected",
			"message": err.Error(),
		})
		return
	}

	conn.Send(map[string]interface{}{
		"type":      "bid_confirmed",
		"bid_id":    bid.ID,
		"amount":    bid.Amount,
		"placed_at": bid.PlacedAt,
	})
}
