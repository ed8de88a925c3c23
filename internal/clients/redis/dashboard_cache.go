package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/studymate/studymate-backend/internal/logger"
	"github.com/studymate/studymate-backend/internal/utils"
)

// DashboardCache holds a user's serialized dashboard payload for a short
// TTL so repeated dashboard loads skip the aggregate queries. Entries are
// invalidated whenever a plan is created or progress is reported.
type DashboardCache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]byte, bool)
	Set(ctx context.Context, userID uuid.UUID, payload []byte) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
	Close() error
}

type dashboardCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewDashboardCache connects to redis at REDIS_ADDR. A missing address is
// an error the caller should treat as "run without a cache".
func NewDashboardCache(log *logger.Logger) (DashboardCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttlSeconds := utils.GetEnvAsInt("DASHBOARD_CACHE_TTL", 60, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &dashboardCache{
		log: log.With("service", "DashboardCache"),
		rdb: rdb,
		ttl: time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func cacheKey(userID uuid.UUID) string {
	return "dashboard:" + userID.String()
}

func (dc *dashboardCache) Get(ctx context.Context, userID uuid.UUID) ([]byte, bool) {
	if dc == nil || dc.rdb == nil {
		return nil, false
	}
	raw, err := dc.rdb.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			dc.log.Warn("dashboard cache read failed", "error", err)
		}
		return nil, false
	}
	return raw, true
}

func (dc *dashboardCache) Set(ctx context.Context, userID uuid.UUID, payload []byte) error {
	if dc == nil || dc.rdb == nil {
		return fmt.Errorf("dashboard cache not initialized")
	}
	return dc.rdb.Set(ctx, cacheKey(userID), payload, dc.ttl).Err()
}

func (dc *dashboardCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if dc == nil || dc.rdb == nil {
		return nil
	}
	return dc.rdb.Del(ctx, cacheKey(userID)).Err()
}

func (dc *dashboardCache) Close() error {
	if dc == nil || dc.rdb == nil {
		return nil
	}
	return dc.rdb.Close()
}
