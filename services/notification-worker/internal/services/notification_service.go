package services

import (
	"context"
	"fmt"

	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/views"
	"github.com/novabank/payportal/services/notification-worker/configs"
	"github.com/novabank/payportal/services/notification-worker/internal/observability"
	"go.uber.org/zap"
)

// NotificationProcessor turns a queued notification job into outbound mail.
type NotificationProcessor interface {
	Process(ctx context.Context, job views.NotificationJob) error
}

type NotificationServiceImpl struct {
	logger        *zap.Logger
	mailer        Mailer
	operatorEmail string
}

func NewNotificationService(logger *zap.Logger, cfg *configs.Config, mailer Mailer) NotificationProcessor {
	return &NotificationServiceImpl{
		logger:        logger,
		mailer:        mailer,
		operatorEmail: cfg.OperatorEmail,
	}
}

// Process dispatches one job. Payment confirmations go to both parties; an
// undeliverable first message fails the whole job so the retry path replays
// it, the mailer is idempotent enough for the duplicate.
func (s NotificationServiceImpl) Process(ctx context.Context, job views.NotificationJob) error {
	switch job.Type {
	case pkg.NotificationPaymentCreated:
		return s.paymentCreated(ctx, job)
	case pkg.NotificationOperatorAlert:
		return s.operatorAlert(ctx, job)
	default:
		// Unknown types are not retryable; report and drop.
		observability.NotificationsProcessed.WithLabelValues(job.Type, "skipped").Inc()
		s.logger.Warn("unknown notification type",
			zap.String(pkg.TraceId, job.TraceID),
			zap.String("type", job.Type))
		return nil
	}
}

func (s NotificationServiceImpl) paymentCreated(ctx context.Context, job views.NotificationJob) error {
	subject := fmt.Sprintf("Payment of %s %s submitted", job.Amount, job.Currency)

	senderBody := fmt.Sprintf(
		"Your international payment of %s %s (reference %s) has been received and is awaiting review.",
		job.Amount, job.Currency, job.ID)
	if err := s.mailer.Send(ctx, job.SenderEmail, subject, senderBody); err != nil {
		observability.NotificationsProcessed.WithLabelValues(job.Type, "failed").Inc()
		return fmt.Errorf("sender mail: %w", err)
	}

	receiverBody := fmt.Sprintf(
		"An international payment of %s %s (reference %s) addressed to you has been submitted and is awaiting review.",
		job.Amount, job.Currency, job.ID)
	if err := s.mailer.Send(ctx, job.ReceiverEmail, subject, receiverBody); err != nil {
		observability.NotificationsProcessed.WithLabelValues(job.Type, "failed").Inc()
		return fmt.Errorf("receiver mail: %w", err)
	}

	observability.NotificationsProcessed.WithLabelValues(job.Type, "delivered").Inc()
	s.logger.Info("payment notification delivered",
		zap.String(pkg.TraceId, job.TraceID),
		zap.String(pkg.PaymentId, job.ID))
	return nil
}

func (s NotificationServiceImpl) operatorAlert(ctx context.Context, job views.NotificationJob) error {
	subject := job.Subject
	if subject == "" {
		subject = "payment portal alert"
	}
	body := fmt.Sprintf("Alert for payment %s:\n\n%s", job.ID, job.Detail)
	if err := s.mailer.Send(ctx, s.operatorEmail, subject, body); err != nil {
		observability.NotificationsProcessed.WithLabelValues(job.Type, "failed").Inc()
		return fmt.Errorf("operator mail: %w", err)
	}

	observability.NotificationsProcessed.WithLabelValues(job.Type, "delivered").Inc()
	s.logger.Info("operator alert delivered",
		zap.String(pkg.TraceId, job.TraceID),
		zap.String(pkg.PaymentId, job.ID))
	return nil
}
