package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/asset-escrow/internal/db"
	"github.com/ignatzorin/asset-escrow/internal/domain/entity"
	"github.com/ignatzorin/asset-escrow/internal/pkg/apperror"
)

type listingRow struct {
	ID       uuid.UUID       `db:"id"`
	SellerID uuid.UUID       `db:"seller_id"`
	Title    string          `db:"title"`
	Price    decimal.Decimal `db:"price"`
	Status   string          `db:"status"`
}

// ListingRepository читает лоты из общей таблицы маркетплейса.
type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(conn *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: conn}
}

func (r *ListingRepository) GetListing(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	row, err := db.GetByID[listingRow](ctx, r.db,
		`SELECT id, seller_id, title, price, status FROM listings WHERE id = $1`, id, apperror.ErrListingNotFound)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить лот")
	}

	return &entity.Listing{
		ID:       row.ID,
		SellerID: row.SellerID,
		Title:    row.Title,
		Price:    row.Price,
		Status:   row.Status,
	}, nil
}

// SaveListing добавляет лот или обновляет существующий.
func (r *ListingRepository) SaveListing(ctx context.Context, listing *entity.Listing) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO listings (id, seller_id, title, price, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, price = EXCLUDED.price, status = EXCLUDED.status, updated_at = NOW()`,
		listing.ID, listing.SellerID, listing.Title, listing.Price, listing.Status)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить лот")
	}
	return nil
}
