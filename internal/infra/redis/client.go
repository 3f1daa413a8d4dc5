package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arklim/casting-agency/internal/infra/config"
)

const pingTimeout = 5 * time.Second

// Client owns the Redis connection pool shared by the rate limiter and the readiness probe.
type Client struct {
	client *redis.Client
	logger *zap.Logger
	addr   string
}

// NewClient dials Redis and fails fast when the server does not answer PING.
func NewClient(ctx context.Context, cfg config.RedisSettings, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	opts := &redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:        10,
		MinIdleConns:    2,
		MaxRetries:      3,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolTimeout:     4 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
	}

	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: cfg.Host,
		}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	logger.Info("redis connection established",
		zap.String("addr", addr),
		zap.Int("db", cfg.DB),
		zap.Bool("tls_enabled", cfg.TLSEnabled),
	)

	return &Client{client: client, logger: logger, addr: addr}, nil
}

// Client returns the underlying redis.Client for repositories.
func (c *Client) Client() *redis.Client {
	return c.client
}

// Addr is the host:port the pool dials.
func (c *Client) Addr() string {
	return c.addr
}

// HealthCheck performs a ping to verify Redis connectivity
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// RegisterPoolMetrics exports connection pool gauges under casting_redis_pool_*.
func (c *Client) RegisterPoolMetrics(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	gauges := map[string]func(*redis.PoolStats) uint32{
		"total_connections": func(s *redis.PoolStats) uint32 { return s.TotalConns },
		"idle_connections":  func(s *redis.PoolStats) uint32 { return s.IdleConns },
		"stale_connections": func(s *redis.PoolStats) uint32 { return s.StaleConns },
		"timeouts":          func(s *redis.PoolStats) uint32 { return s.Timeouts },
	}

	for name, read := range gauges {
		read := read
		collector := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "casting",
			Subsystem: "redis_pool",
			Name:      name,
			Help:      "Redis connection pool statistic " + name + ".",
		}, func() float64 {
			return float64(read(c.client.PoolStats()))
		})
		if err := reg.Register(collector); err != nil {
			return fmt.Errorf("register redis pool %s: %w", name, err)
		}
	}
	return nil
}

// Close gracefully closes the Redis connection pool
func (c *Client) Close() error {
	c.logger.Info("closing redis connection", zap.String("addr", c.addr))
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}
