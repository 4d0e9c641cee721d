package services

import (
	"context"
	"time"

	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/utils"
	"github.com/novabank/payportal/pkg/views"
	"github.com/novabank/payportal/services/notification-worker/configs"
	"github.com/novabank/payportal/services/notification-worker/internal/observability"
	"go.uber.org/zap"
)

// RetryHandler replays failed notification jobs after a jittered exponential
// backoff. Jobs that exhaust the retry budget are dead-lettered.
type RetryHandler interface {
	Start()
}

type RetryConfig struct {
	Context      context.Context
	Logger       *zap.Logger
	Config       *configs.Config
	Processor    NotificationProcessor
	RetryChannel chan views.NotificationJob
	DeadLetter   func(job views.NotificationJob, reason, errMsg string)
}

func NewRetryHandler(cfg RetryConfig) RetryHandler {
	return &cfg
}

func (r *RetryConfig) Start() {
	r.Logger.Info("initializing retry channel")

	go func() {
		for {
			select {
			case <-r.Context.Done():
				return
			case job, ok := <-r.RetryChannel:
				if !ok {
					return
				}
				r.retry(job)
			}
		}
	}()

	r.Logger.Info("listening to retry channel")
}

func (r *RetryConfig) retry(job views.NotificationJob) {
	delay := utils.CalculateExponentialBackoffWithJitter(job.RetryCount, r.Config.RetryBaseBackoff, r.Config.MaxRetryBackoff)
	r.Logger.Info("retrying notification",
		zap.String(pkg.TraceId, job.TraceID),
		zap.String(pkg.PaymentId, job.ID),
		zap.Int("retry_count", job.RetryCount),
		zap.Duration("backoff", delay))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-r.Context.Done():
		return
	case <-timer.C:
	}

	err := r.Processor.Process(r.Context, job)
	if err == nil {
		r.Logger.Info("notification delivered on retry",
			zap.String(pkg.PaymentId, job.ID),
			zap.Int("retry_count", job.RetryCount))
		return
	}

	if job.RetryCount >= r.Config.MaxRetryCount {
		r.Logger.Error("notification retries exhausted",
			zap.String(pkg.PaymentId, job.ID),
			zap.Error(err))
		r.DeadLetter(job, "retry budget exhausted", err.Error())
		return
	}

	job.RetryCount++
	observability.NotificationRetries.Inc()
	select {
	case <-r.Context.Done():
	case r.RetryChannel <- job:
	}
}
