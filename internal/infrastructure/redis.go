package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/krobus00/order-service/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultRedisConnectTimeout = 5 * time.Second
	defaultRedisBackoffFactor  = 2.0
	defaultRedisMinJitter      = 100 * time.Millisecond
	defaultRedisMaxJitter      = 1 * time.Second
)

func NewRedisConnection(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if strings.TrimSpace(cfg.CacheDSN) == "" {
		return nil, errors.New("redis cache_dsn is required")
	}

	options, err := redis.ParseURL(cfg.CacheDSN)
	if err != nil {
		return nil, fmt.Errorf("parse redis cache_dsn: %w", err)
	}

	connectTimeout := cfg.PingInterval
	if connectTimeout <= 0 {
		connectTimeout = defaultRedisConnectTimeout
	}

	maxRetry := cfg.MaxRetry
	if maxRetry < 0 {
		maxRetry = 0
	}

	backoffFactor := cfg.ReconnectFactor
	if backoffFactor < 1 {
		backoffFactor = defaultRedisBackoffFactor
	}

	minJitter := cfg.MinJitter
	if minJitter <= 0 {
		minJitter = defaultRedisMinJitter
	}

	maxJitter := cfg.MaxJitter
	if maxJitter <= 0 {
		maxJitter = defaultRedisMaxJitter
	}
	if maxJitter < minJitter {
		maxJitter = minJitter
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	client := redis.NewClient(options)

	var lastErr error
	for attempt := 0; attempt <= maxRetry; attempt++ {
		if err := ctx.Err(); err != nil {
			_ = client.Close()
			return nil, err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		err := client.Ping(attemptCtx).Err()
		cancel()
		if err == nil {
			logrus.WithFields(logrus.Fields{
				"addr":      options.Addr,
				"max_retry": maxRetry,
			}).Info("redis connection established")

			return client, nil
		}

		lastErr = err
		if attempt == maxRetry {
			break
		}

		waitDuration := backoffWithJitter(attempt, backoffFactor, minJitter, maxJitter, rng)
		logrus.WithFields(logrus.Fields{
			"attempt":   attempt + 1,
			"max_retry": maxRetry,
			"retry_in":  waitDuration.String(),
			"redis_dsn": maskDSN(cfg.CacheDSN),
		}).Warnf("redis connection failed: %v", err)

		select {
		case <-time.After(waitDuration):
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("connect redis after %d attempts: %w", maxRetry+1, lastErr)
}

func StartRedisHealthCheck(ctx context.Context, client *redis.Client, interval time.Duration) {
	if client == nil || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pingCtx, cancel := context.WithTimeout(ctx, interval)
				err := client.Ping(pingCtx).Err()
				cancel()
				if err != nil {
					logrus.Errorf("redis health check failed: %v", err)
				}
			}
		}
	}()
}
