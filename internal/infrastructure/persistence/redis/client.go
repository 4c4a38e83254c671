package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/basketful/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// universalOptions maps config onto go-redis options. Cluster nodes, when
// configured, replace the single host:port address.
func universalOptions(cfg config.RedisConfig) *redis.UniversalOptions {
	addrs := []string{net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))}
	if cfg.EnableCluster && len(cfg.ClusterNodes) > 0 {
		addrs = cfg.ClusterNodes
	}

	return &redis.UniversalOptions{
		Addrs:           addrs,
		Password:        cfg.Password,
		DB:              cfg.Database,
		MaxRetries:      cfg.MaxRetries,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ClientName:      "storefront",
	}
}

// NewClient connects to Redis and pings it once. The caller owns the client.
func NewClient(cfg config.RedisConfig, logger *zap.Logger) (redis.UniversalClient, error) {
	opts := universalOptions(cfg)
	client := redis.NewUniversalClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %v: %w", opts.Addrs, err)
	}

	logger.Info("Connected to Redis",
		zap.Strings("addrs", opts.Addrs),
		zap.Int("db", cfg.Database),
		zap.Bool("cluster", len(opts.Addrs) > 1),
	)
	return client, nil
}
