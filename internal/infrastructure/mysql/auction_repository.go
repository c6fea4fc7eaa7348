package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"auction-engine/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLAuctionRepository struct {
	db *sql.DB
}

func NewMySQLAuctionRepository(db *sql.DB) *MySQLAuctionRepository {
	return &MySQLAuctionRepository{db: db}
}

func (r *MySQLAuctionRepository) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	query := `
        INSERT INTO auctions (id, title, seller_id, starting_price, current_price,
            buy_now_price, bid_increment, start_time, end_time, status, winner_id,
            created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		auction.ID, auction.Title, auction.SellerID,
		auction.StartingPrice, auction.CurrentPrice,
		auction.BuyNowPrice, auction.BidIncrement,
		auction.StartTime, auction.EndTime,
		int(auction.Status), auction.WinnerID,
		auction.CreatedAt, auction.UpdatedAt)
	return err
}

func (r *MySQLAuctionRepository) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	query := `
        SELECT id, title, seller_id, starting_price, current_price, buy_now_price,
            bid_increment, start_time, end_time, status, winner_id, created_at, updated_at
        FROM auctions WHERE id = ?
    `

	var auction domain.Auction
	var status int

	err := r.db.QueryRowContext(ctx, query, auctionID).Scan(
		&auction.ID, &auction.Title, &auction.SellerID,
		&auction.StartingPrice, &auction.CurrentPrice, &auction.BuyNowPrice,
		&auction.BidIncrement, &auction.StartTime, &auction.EndTime,
		&status, &auction.WinnerID, &auction.CreatedAt, &auction.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}

	auction.Status = domain.AuctionStatus(status)
	return &auction, nil
}

func (r *MySQLAuctionRepository) UpdateAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	query := `UPDATE auctions SET status = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, int(status), time.Now(), auctionID)
	return err
}

func (r *MySQLAuctionRepository) UpdateCurrentPrice(ctx context.Context, auctionID string, price float64) error {
	query := `UPDATE auctions SET current_price = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, price, time.Now(), auctionID)
	return err
}

func (r *MySQLAuctionRepository) RecordWinner(ctx context.Context, auctionID, winnerID string) error {
	query := `UPDATE auctions SET winner_id = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, winnerID, time.Now(), auctionID)
	return err
}

func (r *MySQLAuctionRepository) GetActiveAuctions(ctx context.Context) ([]*domain.Auction, error) {
	query := `
        SELECT id, title, seller_id, starting_price, current_price, buy_now_price,
            bid_increment, start_time, end_time, status, winner_id, created_at, updated_at
        FROM auctions WHERE status = ?
    `

	rows, err := r.db.QueryContext(ctx, query, int(domain.AuctionActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		var auction domain.Auction
		var status int

		err := rows.Scan(&auction.ID, &auction.Title, &auction.SellerID,
			&auction.StartingPrice, &auction.CurrentPrice, &auction.BuyNowPrice,
			&auction.BidIncrement, &auction.StartTime, &auction.EndTime,
			&status, &auction.WinnerID, &auction.CreatedAt, &auction.UpdatedAt)
		if err != nil {
			return nil, err
		}

		auction.Status = domain.AuctionStatus(status)
		auctions = append(auctions, &auction)
	}

	return auctions, rows.Err()
}
