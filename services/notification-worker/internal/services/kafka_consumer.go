package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/views"
	"github.com/novabank/payportal/services/notification-worker/configs"
	"github.com/novabank/payportal/services/notification-worker/internal/observability"
	"go.uber.org/zap"
)

// KafkaNotificationHandler consumes notification jobs from Kafka.
type KafkaNotificationHandler interface {
	Start() func()
	DeadLetter(job views.NotificationJob, reason, errMsg string)
}

// KafkaNotificationConfig holds configuration and dependencies for the
// notification consumer.
type KafkaNotificationConfig struct {
	Context      context.Context
	Logger       *zap.Logger
	Config       *configs.Config
	Processor    NotificationProcessor
	RetryChannel chan views.NotificationJob

	// internal initialization
	consumer    *kafka.Consumer
	dlqProducer *kafka.Producer
	sem         chan struct{} // limits concurrent deliveries
}

// NewKafkaNotificationConsumer sets up the Kafka consumer with manual offset
// management and a DLQ producer for jobs that exhaust their retries.
func NewKafkaNotificationConsumer(cfg KafkaNotificationConfig) *KafkaNotificationConfig {
	kafkaConsumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Config.KafkaBrokers,
		"group.id":           cfg.Config.KafkaConsumerGroup,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false, // manual offset management
	})
	if err != nil {
		cfg.Logger.Fatal("Failed to create Kafka notification consumer", zap.Error(err))
	}

	dlqProducer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Config.KafkaBrokers,
		"acks":               "all",
		"enable.idempotence": true,
	})
	if err != nil {
		cfg.Logger.Fatal("Failed to create DLQ producer", zap.Error(err))
	}

	cfg.sem = make(chan struct{}, cfg.Config.MaxConcurrentNotifications)
	cfg.consumer = kafkaConsumer
	cfg.dlqProducer = dlqProducer
	return &cfg
}

// Start initiates the consumption loop and returns a cleanup function.
func (k *KafkaNotificationConfig) Start() func() {
	err := k.consumer.SubscribeTopics([]string{k.Config.KafkaNotificationTopic}, nil)
	if err != nil {
		k.Logger.Fatal("Failed to subscribe to Kafka topic", zap.Error(err))
	}

	k.Logger.Info("Listening to Kafka topic",
		zap.String("topic", k.Config.KafkaNotificationTopic),
		zap.String("group", k.Config.KafkaConsumerGroup))

	go func() {
		for {
			msg, err := k.consumer.ReadMessage(-1)
			if err != nil {
				k.Logger.Error("Failed to read Kafka message", zap.Error(err))
				continue
			}
			k.sem <- struct{}{}
			go func(m *kafka.Message) {
				defer func() { <-k.sem }()
				k.processMessage(m)
			}(msg)
		}
	}()

	return func() {
		if k.dlqProducer != nil {
			k.dlqProducer.Flush(5000)
			k.dlqProducer.Close()
		}
		if err := k.consumer.Close(); err != nil {
			k.Logger.Error("Failed to close Kafka consumer", zap.Error(err))
		}
		k.Logger.Info("Kafka consumer closed successfully")
	}
}

// processMessage decodes and delivers one job. Delivery failures go to the
// retry channel until the retry budget is spent, then to the DLQ. The offset
// is committed in every branch; the retry channel owns the job from there.
func (k *KafkaNotificationConfig) processMessage(msg *kafka.Message) {
	select {
	case <-k.Context.Done():
		return
	default:
	}

	var job views.NotificationJob
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		k.Logger.Error("Failed to decode Kafka message", zap.Error(err))
		k.DeadLetter(job, "json unmarshal error", err.Error())
		_, _ = k.consumer.CommitMessage(msg) // commit to skip invalid message
		return
	}

	if err := k.Processor.Process(k.Context, job); err != nil {
		k.Logger.Error("Failed to deliver notification, scheduling retry",
			zap.String(pkg.TraceId, job.TraceID),
			zap.String(pkg.PaymentId, job.ID),
			zap.Error(err))
		k.scheduleRetry(job, err)
		_, _ = k.consumer.CommitMessage(msg)
		return
	}

	if _, err := k.consumer.CommitMessage(msg); err != nil {
		k.Logger.Error("Failed to commit offset", zap.Error(err))
		return
	}
	k.Logger.Info("Notification delivered",
		zap.String(pkg.TraceId, job.TraceID),
		zap.String(pkg.PaymentId, job.ID))
}

func (k *KafkaNotificationConfig) scheduleRetry(job views.NotificationJob, cause error) {
	if job.RetryCount >= k.Config.MaxRetryCount {
		k.DeadLetter(job, "retry budget exhausted", cause.Error())
		return
	}
	job.RetryCount++
	observability.NotificationRetries.Inc()
	select {
	case <-k.Context.Done():
	case k.RetryChannel <- job:
	}
}

// DeadLetter publishes a failed job to the DLQ with failure context.
func (k *KafkaNotificationConfig) DeadLetter(job views.NotificationJob, reason, errMsg string) {
	observability.NotificationsDeadLettered.Inc()
	payload := map[string]any{
		"job":           job,
		"failureReason": reason,
		"error":         errMsg,
		"failedAt":      time.Now().UTC().Format(time.RFC3339Nano),
	}

	b, err := json.Marshal(payload)
	if err != nil {
		k.Logger.Error("Failed to marshal DLQ payload",
			zap.String(pkg.PaymentId, job.ID),
			zap.Error(err))
		return
	}

	err = k.dlqProducer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &k.Config.KafkaDLQTopic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(job.ID),
		Value: b,
	}, nil)
	if err != nil {
		k.Logger.Error("Failed to publish DLQ payload",
			zap.String(pkg.PaymentId, job.ID),
			zap.Error(err))
		return
	}
	k.Logger.Info("Sent to notification DLQ",
		zap.String(pkg.PaymentId, job.ID),
		zap.String("reason", reason))
}
