package configs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/novabank/payportal/pkg/utils"
	"github.com/novabank/payportal/services/payment-api/internal/gateway"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is loaded once at startup and treated as immutable afterwards; no
// component mutates it or reads the environment again.
type Config struct {
	Port          string `mapstructure:"PORT" validate:"required"`
	PrimaryDbAddr string `mapstructure:"PRIMARY_DB_ADDR" validate:"required"`
	ReplicaDbAddr string `mapstructure:"REPLICA_DB_ADDR"`
	MaxDbCons     int32  `mapstructure:"MAX_DB_CONNECTIONS" validate:"min=1"`
	MinDbCons     int32  `mapstructure:"MIN_DB_CONNECTIONS" validate:"min=1"`

	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"required"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	KafkaBrokers               string        `mapstructure:"KAFKA_BROKERS" validate:"required"`
	KafkaPartition             uint32        `mapstructure:"KAFKA_PARTITION" validate:"min=1"`
	KafkaNotificationTopic     string        `mapstructure:"KAFKA_NOTIFICATION_TOPIC" validate:"required"`
	KafkaNotificationRetention time.Duration `mapstructure:"KAFKA_NOTIFICATION_RETENTION"`

	// AES_KEY is the base64 encoded 32-byte key encrypting national IDs at rest.
	AesKey    string        `mapstructure:"AES_KEY" validate:"required"`
	JwtSecret string        `mapstructure:"JWT_SECRET" validate:"required"`
	JwtIssuer string        `mapstructure:"JWT_ISSUER" validate:"required"`
	JwtTTL    time.Duration `mapstructure:"JWT_TTL" validate:"required"`

	// Requests allowed per client IP within the rate limit window; login gets
	// its own stricter budget.
	RateLimitWindow   time.Duration `mapstructure:"RATE_LIMIT_WINDOW" validate:"required"`
	RateLimitMax      int           `mapstructure:"RATE_LIMIT_MAX" validate:"min=1"`
	RateLimitLoginMax int           `mapstructure:"RATE_LIMIT_LOGIN_MAX" validate:"min=1"`

	// Payment gateway integration. When disabled the API stores payments but
	// returns no redirect, which is what CI and local smoke tests run with.
	GatewayEnabled bool   `mapstructure:"GATEWAY_ENABLED"`
	PfMerchantID   string `mapstructure:"PF_MERCHANT_ID"`
	PfMerchantKey  string `mapstructure:"PF_MERCHANT_KEY"`
	PfPassphrase   string `mapstructure:"PF_PASSPHRASE"`
	PfProcessURL   string `mapstructure:"PF_PROCESS_URL"`
	PfValidateURL  string `mapstructure:"PF_VALIDATE_URL"`
	PfReturnURL    string `mapstructure:"PF_RETURN_URL"`
	PfCancelURL    string `mapstructure:"PF_CANCEL_URL"`
	PfNotifyURL    string `mapstructure:"PF_NOTIFY_URL"`
}

// GatewayConfig maps the flat env config onto the gateway package config.
func (c *Config) GatewayConfig() gateway.Config {
	return gateway.Config{
		MerchantID:  c.PfMerchantID,
		MerchantKey: c.PfMerchantKey,
		Passphrase:  c.PfPassphrase,
		ProcessURL:  c.PfProcessURL,
		ValidateURL: c.PfValidateURL,
		ReturnURL:   c.PfReturnURL,
		CancelURL:   c.PfCancelURL,
		NotifyURL:   c.PfNotifyURL,
	}
}

func Load(logger *zap.Logger) (*Config, error) {
	viper.SetEnvPrefix("app")
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("MAX_DB_CONNECTIONS", "10")
	viper.SetDefault("MIN_DB_CONNECTIONS", "2")
	viper.SetDefault("KAFKA_PARTITION", "4")
	viper.SetDefault("KAFKA_NOTIFICATION_TOPIC", "payment-notifications")
	viper.SetDefault("KAFKA_NOTIFICATION_RETENTION", "24h")
	viper.SetDefault("JWT_ISSUER", "payportal")
	viper.SetDefault("JWT_TTL", "1h")
	viper.SetDefault("RATE_LIMIT_WINDOW", "15m")
	viper.SetDefault("RATE_LIMIT_MAX", "15")
	viper.SetDefault("RATE_LIMIT_LOGIN_MAX", "5")
	viper.SetDefault("PF_PROCESS_URL", "https://sandbox.payfast.co.za/eng/process")

	// Optional: Read from config.yaml if exists
	if gin.ReleaseMode == gin.Mode() {
		viper.SetConfigName("config.prod")
	} else if gin.TestMode == gin.Mode() {
		logger.Warn("running in test mode")
		viper.SetConfigName("config.test")
	} else {
		logger.Warn("running in development mode")
		viper.SetConfigName("config.dev")
	}
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./services/payment-api/configs")
	_ = viper.ReadInConfig() // Ignore if no file

	var cfg Config
	if err := utils.ParseStructEnv(&cfg); err != nil {
		return nil, err
	}
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, utils.FormatConfigErrors(logger, err, cfg)
	}
	return &cfg, nil
}
