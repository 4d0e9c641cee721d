package configs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/novabank/payportal/pkg/utils"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds application configuration for notification-worker. Immutable
// after Load.
type Config struct {
	MetricsAddr                string        `mapstructure:"METRICS_ADDR" validate:"required"`
	KafkaBrokers               string        `mapstructure:"KAFKA_BROKERS" validate:"required"`
	KafkaNotificationTopic     string        `mapstructure:"KAFKA_NOTIFICATION_TOPIC" validate:"required"`
	KafkaConsumerGroup         string        `mapstructure:"KAFKA_CONSUMER_GROUP" validate:"required"`
	KafkaDLQTopic              string        `mapstructure:"KAFKA_DLQ_TOPIC" validate:"required"`
	RetryBaseBackoff           time.Duration `mapstructure:"RETRY_BASE_BACKOFF" validate:"required"`
	MaxRetryBackoff            time.Duration `mapstructure:"MAX_RETRY_BACKOFF" validate:"required"`
	MaxRetryCount              int           `mapstructure:"MAX_RETRY_COUNT" validate:"min=1,max=5"`
	MaxConcurrentNotifications int           `mapstructure:"MAX_CONCURRENT_NOTIFICATIONS" validate:"min=1"`

	// Mail delivery. Sandbox mode logs rendered messages instead of talking to
	// an SMTP server, which is what dev and CI run with.
	SMTPHost      string `mapstructure:"SMTP_HOST"`
	SMTPPort      string `mapstructure:"SMTP_PORT"`
	SMTPUsername  string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword  string `mapstructure:"SMTP_PASSWORD"`
	MailFrom      string `mapstructure:"MAIL_FROM" validate:"required"`
	OperatorEmail string `mapstructure:"OPERATOR_EMAIL" validate:"required"`
	MailSandbox   bool   `mapstructure:"MAIL_SANDBOX"`
}

func Load(logger *zap.Logger) (*Config, error) {
	viper.SetEnvPrefix("app") // Prefix for env vars
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("METRICS_ADDR", ":9102")
	viper.SetDefault("KAFKA_NOTIFICATION_TOPIC", "payment-notifications")
	viper.SetDefault("KAFKA_CONSUMER_GROUP", "notification-worker")
	viper.SetDefault("KAFKA_DLQ_TOPIC", "payment-notifications-dlq")
	viper.SetDefault("RETRY_BASE_BACKOFF", "5s")
	viper.SetDefault("MAX_RETRY_BACKOFF", "2m")
	viper.SetDefault("MAX_RETRY_COUNT", "3")
	viper.SetDefault("MAX_CONCURRENT_NOTIFICATIONS", "8")
	viper.SetDefault("MAIL_FROM", "no-reply@payportal.test")
	viper.SetDefault("OPERATOR_EMAIL", "operators@payportal.test")
	viper.SetDefault("MAIL_SANDBOX", "true")

	// Optional: Read from config.yaml if exists
	if gin.ReleaseMode == gin.Mode() {
		viper.SetConfigName("config.prod")
	} else if gin.TestMode == gin.Mode() {
		logger.Warn("running_in_test_mode")
		viper.SetConfigName("config.test")
	} else {
		logger.Warn("running_in_development_mode")
		viper.SetConfigName("config.dev")
	}
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./services/notification-worker/configs")
	_ = viper.ReadInConfig() // Ignore if no file

	var cfg Config
	if err := utils.ParseStructEnv(&cfg); err != nil {
		return nil, err
	}

	// Validate after unmarshal
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, utils.FormatConfigErrors(logger, err, cfg)
	}
	return &cfg, nil
}
