package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"auction-engine/internal/domain"

	"github.com/go-redis/redis/v8"
)

// RedisPriceCache keeps the live current price and highest bidder per
// auction so read traffic and websocket broadcasts never touch MySQL.
type RedisPriceCache struct {
	client *redis.Client
}

func NewRedisPriceCache(client *redis.Client) *RedisPriceCache {
	return &RedisPriceCache{client: client}
}

func (r *RedisPriceCache) InitializeAuction(ctx context.Context, auctionID string, startingPrice, bidIncrement float64) error {
	key := fmt.Sprintf("auction:%s", auctionID)

	return r.client.HMSet(ctx, key,
		"current_price", fmt.Sprintf("%.2f", startingPrice),
		"bidder_id", "",
		"bid_increment", fmt.Sprintf("%.2f", bidIncrement),
		"last_updated", time.Now().Unix(),
	).Err()
}

// SetCurrentBid updates the cached price only if the new amount exceeds
// the cached one; the check runs inside Redis so concurrent writers
// cannot interleave and a stale write never lowers the price.
func (r *RedisPriceCache) SetCurrentBid(ctx context.Context, auctionID, bidderID string, amount float64) error {
	luaScript := `
        local auction_key = "auction:" .. KEYS[1]
        local current = redis.call('HGET', auction_key, 'current_price')

        if current == false then
            return 0
        end

        if tonumber(ARGV[1]) > tonumber(current) then
            redis.call('HSET', auction_key,
                'current_price', ARGV[1],
                'bidder_id', ARGV[2],
                'last_updated', ARGV[3])
            return 1
        end

        return 0
    `

	return r.client.Eval(ctx, luaScript, []string{auctionID},
		fmt.Sprintf("%.2f", amount),
		bidderID,
		strconv.FormatInt(time.Now().Unix(), 10)).Err()
}

func (r *RedisPriceCache) GetCurrentBid(ctx context.Context, auctionID string) (*domain.CachedPrice, error) {
	key := fmt.Sprintf("auction:%s", auctionID)

	result, err := r.client.HMGet(ctx, key, "current_price", "bidder_id", "bid_increment").Result()
	if err != nil {
		return nil, err
	}

	currentPrice := 0.0
	bidderID := ""
	bidIncrement := 0.0

	if result[0] != nil {
		currentPrice, _ = strconv.ParseFloat(result[0].(string), 64)
	}
	if result[1] != nil {
		bidderID = result[1].(string)
	}
	if result[2] != nil {
		bidIncrement, _ = strconv.ParseFloat(result[2].(string), 64)
	}

	return &domain.CachedPrice{
		AuctionID:    auctionID,
		CurrentPrice: currentPrice,
		BidderID:     bidderID,
		BidIncrement: bidIncrement,
		LastUpdated:  time.Now(),
	}, nil
}
