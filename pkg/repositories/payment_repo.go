package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/database"
	"github.com/novabank/payportal/pkg/models"
)

// PaymentRepository owns payment request persistence. Status transitions go
// through UpdateStatus only; Create pins every new record to `unchecked`
// regardless of what the caller put on the model, so the public submission
// endpoint can never self-verify.
type PaymentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payment models.Payment) (pgconn.CommandTag, error)
	FindByID(ctx context.Context, id uuid.UUID) (models.Payment, error)
	// ListAll returns payments newest first. verified=nil returns everything;
	// otherwise the filter matches the derived verified flag.
	ListAll(ctx context.Context, verified *bool) ([]models.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status pkg.PaymentStatus, reason string) error
}

type PaymentRepositoryImpl struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) PaymentRepository {
	return &PaymentRepositoryImpl{db: db}
}

const paymentColumns = `id, username, account_number, amount, currency, provider, account_info, swift_code,
		sender_email, receiver_email, status, reason, created_at, updated_at`

// amount::text keeps the two-decimal string form the signature was computed over.
const paymentSelectColumns = `id, username, account_number, amount::text, currency, provider, account_info, swift_code,
		sender_email, receiver_email, status, reason, created_at, updated_at`

func (p PaymentRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, payment models.Payment) (pgconn.CommandTag, error) {
	return tx.Exec(ctx, `INSERT INTO payments (`+paymentColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		payment.ID,
		payment.Username,
		payment.AccountNumber,
		payment.Amount,
		payment.Currency,
		payment.Provider,
		payment.AccountInfo,
		payment.SwiftCode,
		payment.SenderEmail,
		payment.ReceiverEmail,
		pkg.PaymentStatusUnchecked, // never trust caller-supplied status
		payment.Reason,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
}

func (p PaymentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (models.Payment, error) {
	row := p.db.QueryRow(ctx, `SELECT `+paymentSelectColumns+` FROM payments WHERE id = $1`, id)
	return scanPayment(row)
}

func (p PaymentRepositoryImpl) ListAll(ctx context.Context, verified *bool) ([]models.Payment, error) {
	query := `SELECT ` + paymentSelectColumns + ` FROM payments`
	args := []any{}
	if verified != nil {
		if *verified {
			query += ` WHERE status = ANY($1)`
			args = append(args, []string{string(pkg.PaymentStatusVerified), string(pkg.PaymentStatusSubmitted)})
		} else {
			query += ` WHERE status = ANY($1)`
			args = append(args, []string{
				string(pkg.PaymentStatusUnchecked),
				string(pkg.PaymentStatusCheckedOk),
				string(pkg.PaymentStatusCheckedMismatch),
			})
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func (p PaymentRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status pkg.PaymentStatus, reason string) error {
	_, err := p.db.Exec(ctx, `UPDATE payments SET status = $1, reason = $2, updated_at = NOW() WHERE id = $3`,
		status, reason, id)
	return err
}

func scanPayment(row pgx.Row) (models.Payment, error) {
	var payment models.Payment
	err := row.Scan(
		&payment.ID,
		&payment.Username,
		&payment.AccountNumber,
		&payment.Amount,
		&payment.Currency,
		&payment.Provider,
		&payment.AccountInfo,
		&payment.SwiftCode,
		&payment.SenderEmail,
		&payment.ReceiverEmail,
		&payment.Status,
		&payment.Reason,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	return payment, err
}
