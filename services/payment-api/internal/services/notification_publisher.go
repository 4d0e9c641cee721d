package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	kafkautils "github.com/novabank/payportal/pkg/kafka"
	"github.com/novabank/payportal/pkg/views"
	"github.com/novabank/payportal/services/payment-api/configs"
	"go.uber.org/zap"
)

// NotificationPublisher hands notification jobs to the worker service over
// Kafka. Delivery is fire-and-forget from the API's point of view: a publish
// failure is logged, never surfaced to the customer.
type NotificationPublisher interface {
	Publish(job views.NotificationJob) error
	Close()
}

type KafkaNotificationPublisher struct {
	logger   *zap.Logger
	producer *kafka.Producer
	cnf      *configs.Config
}

// NewNotificationPublisher ensures the notification topic exists and starts an
// idempotent producer with async delivery reports.
func NewNotificationPublisher(logger *zap.Logger, ctx context.Context, cnf *configs.Config) NotificationPublisher {
	topicConfig := kafkautils.KafkaConfig{
		BootstrapServers: cnf.KafkaBrokers,
		Topics: []kafkautils.TopicConfig{
			{
				Topic:             cnf.KafkaNotificationTopic,
				NumPartitions:     int(cnf.KafkaPartition),
				ReplicationFactor: 1,
				Config: map[string]string{
					"cleanup.policy": "delete",
					"retention.ms":   fmt.Sprintf("%d", cnf.KafkaNotificationRetention.Milliseconds()),
				},
			},
		},
	}
	if err := kafkautils.InitKafkaTopics(logger, ctx, topicConfig); err != nil {
		logger.Fatal("failed to initialize kafka topics", zap.Error(err))
	}

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  cnf.KafkaBrokers,
		"acks":               "all",
		"enable.idempotence": "true",
		"retries":            "1",
	})
	if err != nil {
		logger.Fatal("failed to create kafka producer", zap.Error(err))
	}
	logger.Info("kafka producer created successfully", zap.String("brokers", cnf.KafkaBrokers))
	go handleDeliveryReports(logger, p)
	return &KafkaNotificationPublisher{
		logger:   logger,
		producer: p,
		cnf:      cnf,
	}
}

func (k KafkaNotificationPublisher) Publish(job views.NotificationJob) error {
	msgBytes, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &k.cnf.KafkaNotificationTopic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(job.ID), // payment id keys retries for the same record together
		Value: msgBytes,
	}, nil)
}

func (k KafkaNotificationPublisher) Close() {
	k.producer.Close()
}

func handleDeliveryReports(logger *zap.Logger, p *kafka.Producer) {
	for e := range p.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				logger.Error("failed to publish message", zap.Error(ev.TopicPartition.Error))
			}
		}
	}
}
