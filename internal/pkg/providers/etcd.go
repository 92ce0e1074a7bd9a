package providers

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/JrMarcco/connector/internal/pkg/registry"
	"github.com/JrMarcco/connector/internal/transfer"
	"github.com/JrMarcco/connector/internal/ws"
	"github.com/spf13/viper"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type etcdFxParams struct {
	fx.In

	Logger    *zap.Logger
	Lifecycle fx.Lifecycle
}

const defaultEtcdDialTimeout = 5 * time.Second

func newEtcdClient(params etcdFxParams) (*clientv3.Client, error) {
	type tlsConfig struct {
		Enabled  bool   `mapstructure:"enabled"`
		CertFile string `mapstructure:"cert_file"`
		KeyFile  string `mapstructure:"key_file"`
		CAFile   string `mapstructure:"ca_file"`

		ServerName         string `mapstructure:"server_name"`
		InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
	}

	type config struct {
		Endpoints []string `mapstructure:"endpoints"`

		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`

		DialTimeout time.Duration `mapstructure:"dial_timeout"`

		TLS tlsConfig `mapstructure:"tls"`
	}

	cfg := config{DialTimeout: defaultEtcdDialTimeout}
	if err := viper.UnmarshalKey("etcd", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Endpoints) == 0 {
		return nil, errors.New("etcd endpoints are required")
	}

	clientCfg := clientv3.Config{
		Endpoints:   cfg.Endpoints,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DialTimeout: cfg.DialTimeout,
		Logger:      params.Logger.Named("etcd"),
	}

	// 配置 tls。
	if cfg.TLS.Enabled {
		tlsCfg := &tls.Config{
			MinVersion:         tls.VersionTLS13,
			InsecureSkipVerify: cfg.TLS.InsecureSkipVerify,
		}

		if cfg.TLS.ServerName != "" {
			tlsCfg.ServerName = cfg.TLS.ServerName
		}

		// 加载 Cert 文件。
		if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
			if err != nil {
				params.Logger.Error(
					"[connector-etcd] failed to load x509 key pair for etcd",
					zap.String("cert_file", cfg.TLS.CertFile),
					zap.String("key_file", cfg.TLS.KeyFile),
					zap.Error(err),
				)
				return nil, fmt.Errorf("failed to load x509 key pair for etcd: %w", err)
			}

			tlsCfg.Certificates = []tls.Certificate{cert}

			// 检查证书的公钥算法。
			if len(cert.Certificate) > 0 {
				parsedCert, err := x509.ParseCertificate(cert.Certificate[0])
				if err == nil {
					params.Logger.Info(
						"[connector-etcd] successfully loaded x509 key pair for etcd",
						zap.String("public_key_algorithm", parsedCert.PublicKeyAlgorithm.String()),
						zap.String("signature_algorithm", parsedCert.SignatureAlgorithm.String()),
					)
				}
			}
		}

		// 加载 CA 证书（用于验证服务器的证书是否可信）。
		if cfg.TLS.CAFile != "" {
			caCert, err := os.ReadFile(cfg.TLS.CAFile)
			if err != nil {
				params.Logger.Error(
					"[connector-etcd] failed to load CA file for etcd",
					zap.String("ca_file", cfg.TLS.CAFile),
					zap.Error(err),
				)
				return nil, fmt.Errorf("failed to load CA file for etcd: %w", err)
			}

			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				params.Logger.Error("[connector-etcd] failed to append CA certificate to pool for etcd")
				return nil, errors.New("failed to append CA certificate to pool for etcd")
			}

			tlsCfg.RootCAs = caCertPool
			params.Logger.Info("[connector-etcd] successfully loaded CA file for etcd")
		}

		clientCfg.TLS = tlsCfg
		params.Logger.Info("[connector-etcd] successfully configured TLS for etcd")
	}

	client, err := clientv3.New(clientCfg)
	if err != nil {
		params.Logger.Error("[connector-etcd] failed to create etcd client", zap.Error(err))
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// 测试连接。
			statusCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()

			if _, err := client.Status(statusCtx, cfg.Endpoints[0]); err != nil {
				params.Logger.Error("[connector-etcd] failed to connect to etcd", zap.Error(err))
				return fmt.Errorf("failed to connect to etcd: %w", err)
			}

			params.Logger.Info("[connector-etcd] successfully connected to etcd")
			return nil
		},
		OnStop: func(_ context.Context) error {
			err := client.Close()
			if err != nil {
				params.Logger.Error("[connector-etcd] failed to close etcd client", zap.Error(err))
				return err
			}

			params.Logger.Info("[connector-etcd] etcd client closed")
			return nil
		},
	})

	return client, nil
}

func newRegistry(client *clientv3.Client, wsCfg *ws.Config, handler *transfer.Handler, logger *zap.Logger) (*registry.Registry, error) {
	type config struct {
		Prefix string `mapstructure:"prefix"`
		TTL    int64  `mapstructure:"ttl"`
	}

	cfg := config{Prefix: registry.DefaultPrefix, TTL: registry.DefaultTTL}
	if err := viper.UnmarshalKey("etcd.registry", &cfg); err != nil {
		return nil, err
	}

	return registry.NewRegistry(
		client.KV,
		client.Lease,
		cfg.Prefix,
		handler.ConnectorID(),
		wsCfg.Advertise(),
		cfg.TTL,
		logger,
	), nil
}
