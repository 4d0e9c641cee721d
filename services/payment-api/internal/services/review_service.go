package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/repositories"
	"github.com/novabank/payportal/pkg/views"
	"github.com/novabank/payportal/services/payment-api/internal/validation"
	"github.com/novabank/payportal/services/payment-api/internal/workflow"
	"go.uber.org/zap"
)

// ReviewService drives the employee review flow over stored payments. Each
// operation loads the record, asks the workflow for the transition and
// persists the outcome.
type ReviewService interface {
	// CheckPayment runs the identity checks and records checked_ok or
	// checked_mismatch with the mismatch reason.
	CheckPayment(ctx context.Context, traceID string, id uuid.UUID) (views.PaymentView, error)
	// VerifyPayment promotes a checked_ok payment to verified.
	VerifyPayment(ctx context.Context, traceID string, id uuid.UUID) (views.PaymentView, error)
	// SubmitPayment marks a verified payment submitted. Idempotent.
	SubmitPayment(ctx context.Context, traceID string, id uuid.UUID) (views.PaymentView, error)
}

type ReviewServiceImpl struct {
	logger      *zap.Logger
	paymentRepo repositories.PaymentRepository
	identity    IdentityService
}

func NewReviewService(logger *zap.Logger, paymentRepo repositories.PaymentRepository, identity IdentityService) ReviewService {
	return &ReviewServiceImpl{logger: logger, paymentRepo: paymentRepo, identity: identity}
}

func (s ReviewServiceImpl) CheckPayment(ctx context.Context, traceID string, id uuid.UUID) (views.PaymentView, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return views.PaymentView{}, pkg.HandleSQLError(traceID, s.logger, err)
	}

	result, err := s.identity.VerifyAccountPair(ctx, traceID, validation.VerifyAccountInput{
		AccountNumber: payment.AccountNumber,
		SenderEmail:   payment.SenderEmail,
		AccountInfo:   payment.AccountInfo,
		ReceiverEmail: payment.ReceiverEmail,
	})
	if err != nil {
		return views.PaymentView{}, err
	}

	next, err := workflow.Check(payment.Status, result.Verified)
	if err != nil {
		return views.PaymentView{}, err
	}
	if err := s.paymentRepo.UpdateStatus(ctx, id, next, result.Message); err != nil {
		return views.PaymentView{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	s.logger.Info("payment checked",
		zap.String(pkg.TraceId, traceID),
		zap.String(pkg.PaymentId, id.String()),
		zap.String("status", string(next)))

	payment.Status = next
	payment.Reason = result.Message
	return payment.ToView(), nil
}

func (s ReviewServiceImpl) VerifyPayment(ctx context.Context, traceID string, id uuid.UUID) (views.PaymentView, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return views.PaymentView{}, pkg.HandleSQLError(traceID, s.logger, err)
	}

	next, err := workflow.Verify(payment.Status)
	if err != nil {
		return views.PaymentView{}, err
	}
	if err := s.paymentRepo.UpdateStatus(ctx, id, next, ""); err != nil {
		return views.PaymentView{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	s.logger.Info("payment verified",
		zap.String(pkg.TraceId, traceID),
		zap.String(pkg.PaymentId, id.String()))

	payment.Status = next
	payment.Reason = ""
	return payment.ToView(), nil
}

func (s ReviewServiceImpl) SubmitPayment(ctx context.Context, traceID string, id uuid.UUID) (views.PaymentView, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return views.PaymentView{}, pkg.HandleSQLError(traceID, s.logger, err)
	}

	next, already, err := workflow.Submit(payment.Status)
	if err != nil {
		return views.PaymentView{}, err
	}
	if !already {
		if err := s.paymentRepo.UpdateStatus(ctx, id, next, ""); err != nil {
			return views.PaymentView{}, pkg.HandleSQLError(traceID, s.logger, err)
		}
		s.logger.Info("payment submitted",
			zap.String(pkg.TraceId, traceID),
			zap.String(pkg.PaymentId, id.String()))
	}

	payment.Status = next
	return payment.ToView(), nil
}
