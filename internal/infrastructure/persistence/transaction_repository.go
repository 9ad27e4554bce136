package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/asset-escrow/internal/db"
	"github.com/ignatzorin/asset-escrow/internal/domain/entity"
	"github.com/ignatzorin/asset-escrow/internal/domain/repository"
	"github.com/ignatzorin/asset-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/asset-escrow/internal/pkg/apperror"
)

const transactionColumns = `id, buyer_id, seller_id, listing_id, amount, buyer_fee, seller_fee, total_amount,
	status, verification_deadline, dispute_reason, created_at, updated_at`

const messageColumns = `id, transaction_id, sender_id, content, is_system_message, attachments, sealed_credentials, created_at`

type transactionRow struct {
	ID                   uuid.UUID       `db:"id"`
	BuyerID              uuid.UUID       `db:"buyer_id"`
	SellerID             uuid.UUID       `db:"seller_id"`
	ListingID            uuid.UUID       `db:"listing_id"`
	Amount               decimal.Decimal `db:"amount"`
	BuyerFee             decimal.Decimal `db:"buyer_fee"`
	SellerFee            decimal.Decimal `db:"seller_fee"`
	TotalAmount          decimal.Decimal `db:"total_amount"`
	Status               string          `db:"status"`
	VerificationDeadline *time.Time      `db:"verification_deadline"`
	DisputeReason        *string         `db:"dispute_reason"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

func (r transactionRow) toEntity() *entity.Transaction {
	return &entity.Transaction{
		ID:                   r.ID,
		BuyerID:              r.BuyerID,
		SellerID:             r.SellerID,
		ListingID:            r.ListingID,
		Amount:               r.Amount,
		BuyerFee:             r.BuyerFee,
		SellerFee:            r.SellerFee,
		TotalAmount:          r.TotalAmount,
		Status:               valueobject.TransactionStatus(r.Status),
		VerificationDeadline: r.VerificationDeadline,
		DisputeReason:        r.DisputeReason,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

type messageRow struct {
	ID                uuid.UUID      `db:"id"`
	TransactionID     uuid.UUID      `db:"transaction_id"`
	SenderID          uuid.UUID      `db:"sender_id"`
	Content           string         `db:"content"`
	IsSystemMessage   bool           `db:"is_system_message"`
	Attachments       pq.StringArray `db:"attachments"`
	SealedCredentials []byte         `db:"sealed_credentials"`
	CreatedAt         time.Time      `db:"created_at"`
}

func (r messageRow) toEntity() *entity.Message {
	attachments := []string(r.Attachments)
	if attachments == nil {
		attachments = []string{}
	}
	return &entity.Message{
		ID:                r.ID,
		TransactionID:     r.TransactionID,
		SenderID:          r.SenderID,
		Content:           r.Content,
		IsSystemMessage:   r.IsSystemMessage,
		Attachments:       attachments,
		SealedCredentials: r.SealedCredentials,
		CreatedAt:         r.CreatedAt,
	}
}

// TransactionRepository хранит сделки и их сообщения в PostgreSQL.
type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(conn *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: conn}
}

func (r *TransactionRepository) Create(ctx context.Context, t *entity.Transaction, initial *entity.Message) error {
	err := db.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO escrow_transactions (`+transactionColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`,
			t.ID,
			t.BuyerID,
			t.SellerID,
			t.ListingID,
			t.Amount,
			t.BuyerFee,
			t.SellerFee,
			t.TotalAmount,
			string(t.Status),
			t.VerificationDeadline,
			t.DisputeReason,
			t.CreatedAt,
			t.UpdatedAt,
		)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return apperror.ErrTransactionExists
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать сделку")
		}

		if initial != nil {
			return insertMessage(ctx, tx, initial)
		}
		return nil
	})
	return err
}

func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	row, err := db.GetByID[transactionRow](ctx, r.db,
		`SELECT `+transactionColumns+` FROM escrow_transactions WHERE id = $1`, id, apperror.ErrTransactionNotFound)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сделку")
	}
	return row.toEntity(), nil
}

func (r *TransactionRepository) Update(ctx context.Context, change repository.TransactionUpdate) (*entity.Transaction, error) {
	var updated *entity.Transaction

	err := db.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var row transactionRow
		err := tx.GetContext(ctx, &row, `
			UPDATE escrow_transactions
			SET status = $3, dispute_reason = COALESCE($4, dispute_reason), updated_at = NOW()
			WHERE id = $1 AND status = $2
			RETURNING `+transactionColumns,
			change.ID, string(change.ExpectedStatus), string(change.Status), change.DisputeReason,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return r.missingOrChanged(ctx, tx, change.ID)
		}
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить сделку")
		}

		if change.Message != nil {
			if err := insertMessage(ctx, tx, change.Message); err != nil {
				return err
			}
		}

		updated = row.toEntity()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// missingOrChanged различает отсутствие сделки и параллельную смену статуса.
func (r *TransactionRepository) missingOrChanged(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM escrow_transactions WHERE id = $1)`, id); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить сделку")
	}
	if !exists {
		return apperror.ErrTransactionNotFound
	}
	return apperror.ErrConcurrentModification
}

func (r *TransactionRepository) AppendMessage(ctx context.Context, msg *entity.Message) error {
	return db.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		return insertMessage(ctx, tx, msg)
	})
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, role valueobject.PartyRole) ([]*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM escrow_transactions `
	switch role {
	case valueobject.PartyRoleBuyer:
		query += `WHERE buyer_id = $1 `
	case valueobject.PartyRoleSeller:
		query += `WHERE seller_id = $1 `
	default:
		query += `WHERE buyer_id = $1 OR seller_id = $1 `
	}
	query += `ORDER BY created_at DESC, id`

	var rows []transactionRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список сделок")
	}

	result := make([]*entity.Transaction, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toEntity())
	}
	return result, nil
}

func (r *TransactionRepository) ListMessages(ctx context.Context, transactionID uuid.UUID) ([]*entity.Message, error) {
	var rows []messageRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+messageColumns+` FROM escrow_messages
		WHERE transaction_id = $1
		ORDER BY seq
	`, transactionID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сообщения сделки")
	}

	result := make([]*entity.Message, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toEntity())
	}
	return result, nil
}

func insertMessage(ctx context.Context, tx *sqlx.Tx, msg *entity.Message) error {
	attachments := msg.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO escrow_messages (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		msg.ID,
		msg.TransactionID,
		msg.SenderID,
		msg.Content,
		msg.IsSystemMessage,
		pq.StringArray(attachments),
		msg.SealedCredentials,
		msg.CreatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return apperror.New(apperror.ErrCodeConflict, "сообщение с таким id уже существует")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить сообщение")
	}
	return nil
}
