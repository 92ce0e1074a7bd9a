package providers

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/JrMarcco/connector/internal/pkg/xmq/produce"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/scram"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newKafkaWriter(zapLogger *zap.Logger, lifecycle fx.Lifecycle) (*kafka.Writer, error) {
	cfg, err := loadKafkaConfig()
	if err != nil {
		return nil, err
	}

	// 配置 TLS。
	tlsConfig, err := configureKafkaTLS(cfg.TLS, zapLogger)
	if err != nil {
		return nil, err
	}

	// 配置 SASL。
	saslMechanism, err := configureKafkaSasl(cfg.SASL, zapLogger)
	if err != nil {
		return nil, err
	}

	// 创建 Writer（Producer）。
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &produce.XXHashBalancer{}, // 同一用户的离线消息写入同一分区
		Compression:  getKafkaCompression(cfg.Producer.Compression),
		MaxAttempts:  cfg.Producer.RetryMax,
		BatchSize:    cfg.Producer.BatchSize,
		BatchBytes:   int64(cfg.Producer.MaxMessageBytes),
		BatchTimeout: cfg.Producer.BatchTimeout,
		ReadTimeout:  cfg.Producer.ReadTimeout, // 从 broker 读取响应的超时
		WriteTimeout: cfg.Producer.WriteTimeout,
		RequiredAcks: getKafkaRequiredAcks(cfg.Producer.RequiredAcks),
		Async:        false, // 同步模式
		Transport:    createKafkaTransport(tlsConfig, saslMechanism),
	}

	// 如果启用幂等性，设置为精确一次语义。
	if cfg.Producer.IdempotentEnabled {
		writer.RequiredAcks = kafka.RequireAll
	}

	zapLogger.Info(
		"[connector-kafka] successfully created kafka writer",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("compression", cfg.Producer.Compression),
		zap.Int("required_acks", cfg.Producer.RequiredAcks),
		zap.Bool("idempotent", cfg.Producer.IdempotentEnabled),
	)

	// 注册生命周期钩子。
	lifecycle.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if err := writer.Close(); err != nil {
				zapLogger.Error("[connector-kafka] failed to close kafka writer", zap.Error(err))
				return fmt.Errorf("failed to close kafka writer: %w", err)
			}
			zapLogger.Info("[connector-kafka] kafka writer closed")
			return nil
		},
	})

	return writer, nil
}

func newKafkaProducer(writer *kafka.Writer, logger *zap.Logger) *produce.KafkaProducer {
	return produce.NewKafkaProducer(writer, logger)
}

type kafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`

	Producer kafkaProducerConfig `mapstructure:"producer"`

	TLS  kafkaTLSConfig  `mapstructure:"tls"`
	SASL kafkaSaslConfig `mapstructure:"sasl"`
}

type kafkaProducerConfig struct {
	// Producer 配置
	RequiredAcks      int           `mapstructure:"required_acks"`      // -1=all, 0=none, 1=leader
	Compression       string        `mapstructure:"compression"`        // none, gzip, snappy, lz4, zstd
	MaxMessageBytes   int           `mapstructure:"max_message_bytes"`  // 最大消息大小，默认 1MB
	RetryMax          int           `mapstructure:"retry_max"`          // 最大重试次数
	BatchSize         int           `mapstructure:"batch_size"`         // 批量大小
	BatchTimeout      time.Duration `mapstructure:"batch_timeout"`      // 批量超时时间
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`       // 读取响应超时
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`      // 写入超时
	IdempotentEnabled bool          `mapstructure:"idempotent_enabled"` // 是否启用幂等性
}

type kafkaTLSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	CAFile  string `mapstructure:"ca_file"`
}

type kafkaSaslConfig struct {
	// Mechanism 为 SASL 认证方式，"" ( 不启用 )、"scram" 或 "oauthbearer"。
	Mechanism string `mapstructure:"mechanism"`

	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	TokenEndpoint string `mapstructure:"token_endpoint"`
	ClientID      string `mapstructure:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"`
}

// loadKafkaConfig 加载 Kafka 配置。
func loadKafkaConfig() (*kafkaConfig, error) {
	cfg := &kafkaConfig{}
	if err := viper.UnmarshalKey("kafka", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kafka config: %w", err)
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	return cfg, nil
}

// configureKafkaTLS 配置 TLS，未启用时返回 nil。
func configureKafkaTLS(tlsCfg kafkaTLSConfig, logger *zap.Logger) (*tls.Config, error) {
	if !tlsCfg.Enabled {
		return nil, nil
	}
	if tlsCfg.CAFile == "" {
		return nil, errors.New("CA file is required")
	}

	tlsConf := &tls.Config{
		MinVersion:         tls.VersionTLS13,
		InsecureSkipVerify: false, // 强制 TLS 认证
	}

	caCert, err := os.ReadFile(tlsCfg.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file for kafka: %w", err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		logger.Error("[connector-kafka] failed to append CA certificate to pool for kafka")
		return nil, fmt.Errorf("failed to append CA certificate to pool for kafka")
	}
	tlsConf.RootCAs = caCertPool

	logger.Info("[connector-kafka] successfully configured TLS for kafka")

	return tlsConf, nil
}

// configureKafkaSasl 配置 SASL 认证，未启用时返回 nil。
func configureKafkaSasl(saslCfg kafkaSaslConfig, logger *zap.Logger) (sasl.Mechanism, error) {
	switch saslCfg.Mechanism {
	case "":
		return nil, nil
	case "scram":
		return configureKafkaScram(saslCfg, logger)
	case "oauthbearer":
		if saslCfg.TokenEndpoint == "" {
			return nil, errors.New("token endpoint is required")
		}
		logger.Info(
			"[connector-kafka] successfully configured SASL/OAUTHBEARER for kafka",
			zap.String("client_id", saslCfg.ClientID),
		)
		return NewKafkaOAuthMechanism(saslCfg.TokenEndpoint, saslCfg.ClientID, saslCfg.ClientSecret), nil
	default:
		return nil, fmt.Errorf("unsupported kafka sasl mechanism: %s", saslCfg.Mechanism)
	}
}

// configureKafkaScram 配置 SASL/SCRAM-SHA-256 认证。
func configureKafkaScram(saslCfg kafkaSaslConfig, logger *zap.Logger) (sasl.Mechanism, error) {
	if saslCfg.Username == "" || saslCfg.Password == "" {
		return nil, errors.New("username and password are required")
	}

	mechanism, err := scram.Mechanism(scram.SHA256, saslCfg.Username, saslCfg.Password)
	if err != nil {
		logger.Error(
			"[connector-kafka] failed to create SASL mechanism",
			zap.String("username", saslCfg.Username),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
	}

	logger.Info(
		"[connector-kafka] successfully configured SASL/SCRAM-SHA-256 for kafka",
		zap.String("username", saslCfg.Username),
	)

	return mechanism, nil
}

// getKafkaCompression 获取压缩算法。
func getKafkaCompression(compression string) kafka.Compression {
	switch compression {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Compression(0) // none
	}
}

// getKafkaRequiredAcks 获取 RequiredAcks 配置。
func getKafkaRequiredAcks(acks int) kafka.RequiredAcks {
	switch acks {
	case -1:
		return kafka.RequireAll
	case 0:
		return kafka.RequireNone
	case 1:
		return kafka.RequireOne
	default:
		return kafka.RequireAll
	}
}

// createKafkaTransport 创建带有 TLS 和 SASL 的 Transport。
func createKafkaTransport(tlsConfig *tls.Config, saslMechanism sasl.Mechanism) *kafka.Transport {
	transport := &kafka.Transport{
		TLS:  tlsConfig,
		SASL: saslMechanism,
	}
	return transport
}
