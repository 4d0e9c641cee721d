package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/models"
	"github.com/novabank/payportal/pkg/repositories"
	"github.com/novabank/payportal/pkg/views"
	"github.com/novabank/payportal/services/payment-api/internal/gateway"
	"github.com/novabank/payportal/services/payment-api/internal/validation"
	svcviews "github.com/novabank/payportal/services/payment-api/internal/views"
	"go.uber.org/zap"
)

// TxRunner is the slice of database.DB the services need for writes.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// PaymentService owns the customer-facing payment flow: sanitize, validate,
// persist as unchecked, then hand the customer a signed gateway redirect.
type PaymentService interface {
	CreatePayment(ctx context.Context, traceID string, req svcviews.PaymentRequest) (svcviews.PaymentCreatedResponse, error)
	ListPayments(ctx context.Context, traceID string, verified *bool) ([]views.PaymentView, error)
}

type PaymentServiceImpl struct {
	logger      *zap.Logger
	db          TxRunner
	paymentRepo repositories.PaymentRepository
	publisher   NotificationPublisher
	builder     *gateway.Builder // nil when the gateway integration is disabled
}

func NewPaymentService(logger *zap.Logger, db TxRunner, paymentRepo repositories.PaymentRepository,
	publisher NotificationPublisher, builder *gateway.Builder) PaymentService {
	return &PaymentServiceImpl{
		logger:      logger,
		db:          db,
		paymentRepo: paymentRepo,
		publisher:   publisher,
		builder:     builder,
	}
}

// CreatePayment stores the request and builds the signed redirect. The record
// always lands in `unchecked`: only the employee review flow moves it forward.
// The amount is normalized to two decimals before it is persisted so the
// stored value and the signed value can never diverge.
func (s PaymentServiceImpl) CreatePayment(ctx context.Context, traceID string, req svcviews.PaymentRequest) (svcviews.PaymentCreatedResponse, error) {
	in := validation.SanitizePayment(validation.PaymentInput{
		Username:      req.Username,
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Provider:      req.Provider,
		AccountInfo:   req.AccountInfo,
		SwiftCode:     req.SwiftCode,
		SenderEmail:   req.SenderEmail,
		ReceiverEmail: req.ReceiverEmail,
	})
	if err := in.Validate(); err != nil {
		return svcviews.PaymentCreatedResponse{}, err
	}

	amount, err := gateway.FormatAmount(in.Amount)
	if err != nil {
		return svcviews.PaymentCreatedResponse{}, pkg.NewAppError(pkg.ErrInvalidFormatCode, "invalid amount format", err)
	}

	now := time.Now()
	payment := models.Payment{
		ID:            uuid.New(),
		Username:      in.Username,
		AccountNumber: in.AccountNumber,
		Amount:        amount,
		Currency:      in.Currency,
		Provider:      in.Provider,
		AccountInfo:   in.AccountInfo,
		SwiftCode:     in.SwiftCode,
		SenderEmail:   in.SenderEmail,
		ReceiverEmail: in.ReceiverEmail,
		Status:        pkg.PaymentStatusUnchecked,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := s.paymentRepo.Create(ctx, tx, payment)
		return err
	})
	if err != nil {
		return svcviews.PaymentCreatedResponse{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	s.logger.Info("payment stored",
		zap.String(pkg.TraceId, traceID),
		zap.String(pkg.PaymentId, payment.ID.String()),
		zap.String("amount", payment.Amount),
		zap.String("currency", payment.Currency))

	resp := svcviews.PaymentCreatedResponse{Payment: payment.ToView()}
	if s.builder != nil {
		redirect, err := s.builder.BuildRedirect(amount, "International payment", payment.SenderEmail)
		if err != nil {
			// The record is already committed and stays unchecked; alert the
			// operators and fail the request.
			s.notify(views.NotificationJob{
				ID:      payment.ID.String(),
				Type:    pkg.NotificationOperatorAlert,
				TraceID: traceID,
				Subject: "gateway redirect failed",
				Detail:  err.Error(),
			})
			return svcviews.PaymentCreatedResponse{}, pkg.NewAppError(pkg.ErrSignatureCode, pkg.ErrSignatureCode.Message, err)
		}
		resp.RedirectURL = redirect
	}

	s.notify(views.NotificationJob{
		ID:            payment.ID.String(),
		Type:          pkg.NotificationPaymentCreated,
		TraceID:       traceID,
		SenderEmail:   payment.SenderEmail,
		ReceiverEmail: payment.ReceiverEmail,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
	})
	return resp, nil
}

// notify publishes fire-and-forget: notification problems never fail the
// payment request.
func (s PaymentServiceImpl) notify(job views.NotificationJob) {
	if s.publisher == nil {
		return
	}
	job.CreatedAt = time.Now()
	if err := s.publisher.Publish(job); err != nil {
		s.logger.Error("failed to publish notification",
			zap.String(pkg.TraceId, job.TraceID),
			zap.String("type", job.Type),
			zap.Error(err))
	}
}

func (s PaymentServiceImpl) ListPayments(ctx context.Context, traceID string, verified *bool) ([]views.PaymentView, error) {
	payments, err := s.paymentRepo.ListAll(ctx, verified)
	if err != nil {
		return nil, pkg.HandleSQLError(traceID, s.logger, err)
	}
	result := make([]views.PaymentView, 0, len(payments))
	for _, p := range payments {
		result = append(result, p.ToView())
	}
	return result, nil
}
