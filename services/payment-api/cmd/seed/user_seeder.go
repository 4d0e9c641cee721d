// Seeds demo users for local development: two customers and one employee
// reviewer. Safe to re-run; duplicate identities are reported and skipped.
//
// Example:
//
//	go run ./services/payment-api/cmd/seed -password="demo pass phrase"
package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/database"
	"github.com/novabank/payportal/pkg/models"
	"github.com/novabank/payportal/pkg/repositories"
	"github.com/novabank/payportal/pkg/utils"
	"github.com/novabank/payportal/services/payment-api/configs"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var password = flag.String("password", "demo pass phrase", "Password for every seeded user")

type seedUser struct {
	firstName     string
	lastName      string
	idNumber      string
	accountNumber string
	username      string
	email         string
	role          string
}

var seedUsers = []seedUser{
	{"Alice", "Morgan", "900101001", "11111111", "alice_01", "alice@demo.test", pkg.RoleUser},
	{"Bob", "Nel", "900202002", "22222222", "bob_02", "bob@demo.test", pkg.RoleUser},
	{"Eve", "Adams", "900303003", "99999999", "eve_reviewer", "eve@demo.test", pkg.RoleEmployee},
}

func main() {
	flag.Parse()

	pkg.InitLogger()
	logger := pkg.Logger
	defer logger.Sync()

	cfg, err := configs.Load(logger)
	if err != nil {
		logger.Fatal("failed_to_load_config", zap.Error(err))
	}
	aesKey, err := utils.DecodeString(cfg.AesKey)
	if err != nil {
		logger.Fatal("invalid_aes_key", zap.Error(err))
	}

	ctx := context.Background()
	db, closer, err := database.New(ctx, logger, database.Config{
		PrimaryDSN:  cfg.PrimaryDbAddr,
		ReplicaDSNs: []string{cfg.ReplicaDbAddr},
		MaxConns:    cfg.MaxDbCons,
		MinConns:    cfg.MinDbCons,
	})
	if err != nil {
		logger.Fatal("failed_to_init_db", zap.Error(err))
	}
	defer closer()

	if err := database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
		logger.Fatal("failed_to_run_migrations", zap.Error(err))
	}

	userRepo := repositories.NewUserRepository(db)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("failed_to_hash_password", zap.Error(err))
	}

	for _, su := range seedUsers {
		idNumberEnc, err := utils.EncryptAES([]byte(su.idNumber), aesKey)
		if err != nil {
			logger.Fatal("failed_to_encrypt_id_number", zap.Error(err))
		}
		now := time.Now()
		user := models.User{
			ID:            uuid.New(),
			FirstName:     su.firstName,
			LastName:      su.lastName,
			IDNumberEnc:   idNumberEnc,
			IDNumberHash:  utils.HashIdentifier(su.idNumber),
			AccountNumber: su.accountNumber,
			Username:      su.username,
			Email:         su.email,
			PasswordHash:  string(passwordHash),
			Role:          su.role,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		err = db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
			_, err := userRepo.Create(ctx, tx, user)
			return err
		})
		if err != nil {
			mapped := pkg.HandleSQLError("seed", logger, err)
			var appErr pkg.AppError
			if errors.As(mapped, &appErr) && appErr.Code == pkg.ErrDuplicateIdentityCode {
				logger.Warn("user_already_seeded", zap.String("username", su.username))
				continue
			}
			logger.Fatal("failed_to_seed_user", zap.String("username", su.username), zap.Error(err))
		}
		logger.Info("user_seeded",
			zap.String("username", su.username),
			zap.String("role", su.role),
			zap.String("account_number", su.accountNumber))
	}
}
