package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/models"
	"github.com/novabank/payportal/pkg/repositories"
	"github.com/novabank/payportal/pkg/utils"
	"github.com/novabank/payportal/pkg/views"
	"github.com/novabank/payportal/services/payment-api/internal/auth"
	"github.com/novabank/payportal/services/payment-api/internal/validation"
	svcviews "github.com/novabank/payportal/services/payment-api/internal/views"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService owns customer registration and login. Passwords are bcrypt
// hashed; the national ID is stored AES-encrypted with a deterministic digest
// column carrying the uniqueness constraint.
type AuthService interface {
	Register(ctx context.Context, traceID string, req svcviews.RegisterRequest) (views.UserProfile, error)
	Login(ctx context.Context, traceID string, req svcviews.LoginRequest) (svcviews.LoginResponse, error)
}

type AuthServiceImpl struct {
	logger   *zap.Logger
	db       TxRunner
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
	aesKey   []byte
}

func NewAuthService(logger *zap.Logger, db TxRunner, userRepo repositories.UserRepository,
	tokens *auth.TokenManager, aesKey []byte) AuthService {
	return &AuthServiceImpl{
		logger:   logger,
		db:       db,
		userRepo: userRepo,
		tokens:   tokens,
		aesKey:   aesKey,
	}
}

func (s AuthServiceImpl) Register(ctx context.Context, traceID string, req svcviews.RegisterRequest) (views.UserProfile, error) {
	in := validation.SanitizeRegister(validation.RegisterInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		IDNumber:      req.IDNumber,
		AccountNumber: req.AccountNumber,
		Username:      req.Username,
		Email:         req.Email,
		Password:      req.Password,
		PhoneNumber:   req.PhoneNumber,
		Country:       req.Country,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
	})
	if err := in.Validate(); err != nil {
		return views.UserProfile{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return views.UserProfile{}, pkg.NewAppError(pkg.ErrServerCode, "failed to hash password", err)
	}
	idNumberEnc, err := utils.EncryptAES([]byte(in.IDNumber), s.aesKey)
	if err != nil {
		return views.UserProfile{}, pkg.NewAppError(pkg.ErrServerCode, "failed to encrypt id number", err)
	}

	now := time.Now()
	user := models.User{
		ID:            uuid.New(),
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		IDNumberEnc:   idNumberEnc,
		IDNumberHash:  utils.HashIdentifier(in.IDNumber),
		AccountNumber: in.AccountNumber,
		Username:      in.Username,
		Email:         in.Email,
		PasswordHash:  string(passwordHash),
		PhoneNumber:   in.PhoneNumber,
		Country:       in.Country,
		Address:       in.Address,
		City:          in.City,
		PostalCode:    in.PostalCode,
		Role:          pkg.RoleUser,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := s.userRepo.Create(ctx, tx, user)
		return err
	})
	if err != nil {
		return views.UserProfile{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	s.logger.Info("user registered",
		zap.String(pkg.TraceId, traceID),
		zap.String("user_id", user.ID.String()))
	return user.ToProfile(), nil
}

// Login resolves the (accountNumber, username) pair and compares the bcrypt
// hash. A missing user and a wrong password yield the same 401 so the
// endpoint cannot be used to probe for registered accounts.
func (s AuthServiceImpl) Login(ctx context.Context, traceID string, req svcviews.LoginRequest) (svcviews.LoginResponse, error) {
	accountNumber := validation.Sanitize(req.AccountNumber)
	username := validation.Sanitize(req.Username)
	if accountNumber == "" || username == "" || req.Password == "" {
		return svcviews.LoginResponse{}, pkg.NewAppError(pkg.ErrMissingFieldCode, "missing required fields", nil)
	}

	user, err := s.userRepo.FindByAccountAndUsername(ctx, accountNumber, username)
	if err != nil {
		if isNotFound(err) {
			return svcviews.LoginResponse{}, pkg.NewAppError(pkg.ErrInvalidCredentialsCode, pkg.ErrInvalidCredentialsCode.Message, nil)
		}
		return svcviews.LoginResponse{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login rejected", zap.String(pkg.TraceId, traceID), zap.String("username", username))
		return svcviews.LoginResponse{}, pkg.NewAppError(pkg.ErrInvalidCredentialsCode, pkg.ErrInvalidCredentialsCode.Message, nil)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return svcviews.LoginResponse{}, pkg.NewAppError(pkg.ErrServerCode, "failed to issue token", err)
	}
	s.logger.Info("user logged in",
		zap.String(pkg.TraceId, traceID),
		zap.String("user_id", user.ID.String()))
	return svcviews.LoginResponse{Token: token, Profile: user.ToProfile()}, nil
}
