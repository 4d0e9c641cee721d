package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/repositories"
	"github.com/novabank/payportal/services/payment-api/internal/validation"
	svcviews "github.com/novabank/payportal/services/payment-api/internal/views"
	"go.uber.org/zap"
)

// IdentityService checks the sender and receiver of a payment against the
// registered customer base. Read-only: it never mutates a record, so callers
// can run it as many times as they like.
type IdentityService interface {
	VerifyAccountPair(ctx context.Context, traceID string, in validation.VerifyAccountInput) (svcviews.VerifyAccountResult, error)
}

type IdentityServiceImpl struct {
	logger   *zap.Logger
	userRepo repositories.UserRepository
}

func NewIdentityService(logger *zap.Logger, userRepo repositories.UserRepository) IdentityService {
	return &IdentityServiceImpl{logger: logger, userRepo: userRepo}
}

// VerifyAccountPair runs the four checks in a fixed order and reports the
// first failure: sender email registered, sender account number matches that
// user, receiver email registered, receiver account (accountInfo) matches.
// A missing user is a mismatch outcome, not an error; only storage faults
// surface as errors.
func (s IdentityServiceImpl) VerifyAccountPair(ctx context.Context, traceID string, in validation.VerifyAccountInput) (svcviews.VerifyAccountResult, error) {
	mismatch := func(msg string, notFound bool) svcviews.VerifyAccountResult {
		s.logger.Info("identity check failed",
			zap.String(pkg.TraceId, traceID),
			zap.String("reason", msg))
		return svcviews.VerifyAccountResult{Verified: false, Message: msg, NotFound: notFound}
	}

	sender, err := s.userRepo.FindByEmail(ctx, in.SenderEmail)
	if err != nil {
		if isNotFound(err) {
			return mismatch("sender email not found", true), nil
		}
		return svcviews.VerifyAccountResult{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	if sender.AccountNumber != in.AccountNumber {
		return mismatch("sender account number mismatch", false), nil
	}

	receiver, err := s.userRepo.FindByEmail(ctx, in.ReceiverEmail)
	if err != nil {
		if isNotFound(err) {
			return mismatch("receiver email not found", true), nil
		}
		return svcviews.VerifyAccountResult{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	if receiver.AccountNumber != in.AccountInfo {
		return mismatch("receiver account mismatch", false), nil
	}

	return svcviews.VerifyAccountResult{Verified: true}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, errNotFound)
}

// errNotFound lets fakes in tests signal a missing row without a pgx error.
var errNotFound = errors.New("not found")
