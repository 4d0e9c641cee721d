package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/novabank/payportal/pkg/database"
	"github.com/novabank/payportal/pkg/models"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	// Create inserts a new user. Unique violations on email, username,
	// account number or national ID digest surface as pg error 23505.
	Create(ctx context.Context, tx pgx.Tx, user models.User) (pgconn.CommandTag, error)
	// FindByEmail returns the user whose email matches exactly.
	FindByEmail(ctx context.Context, email string) (models.User, error)
	// FindByAccountAndUsername resolves the (accountNumber, username) login pair.
	FindByAccountAndUsername(ctx context.Context, accountNumber, username string) (models.User, error)
}

type UserRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

const userColumns = `id, first_name, last_name, id_number_enc, id_number_hash, account_number, username, email,
		password_hash, phone_number, country, address, city, postal_code, role, created_at, updated_at`

func (u UserRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, user models.User) (pgconn.CommandTag, error) {
	return tx.Exec(ctx, `INSERT INTO users (`+userColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		user.ID,
		user.FirstName,
		user.LastName,
		user.IDNumberEnc,
		user.IDNumberHash,
		user.AccountNumber,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.PhoneNumber,
		user.Country,
		user.Address,
		user.City,
		user.PostalCode,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
}

func (u UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (models.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (u UserRepositoryImpl) FindByAccountAndUsername(ctx context.Context, accountNumber, username string) (models.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE account_number = $1 AND username = $2`,
		accountNumber, username)
	return scanUser(row)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.IDNumberEnc,
		&user.IDNumberHash,
		&user.AccountNumber,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.PhoneNumber,
		&user.Country,
		&user.Address,
		&user.City,
		&user.PostalCode,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}
