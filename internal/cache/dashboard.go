package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/utils"

	"github.com/go-redis/redis/v8"
)

const (
	dashboardKey  = "blooddrive:dashboard"
	generationKey = "blooddrive:dashboard:gen"
)

var (
	ErrMiss = errors.New("cache miss")
	// ErrStale means the dashboard was computed before the last invalidation
	// and was not stored.
	ErrStale = errors.New("dashboard is stale")
)

// setIfCurrent stores the dashboard only while the generation is unchanged.
var setIfCurrent = redis.NewScript(`
if (redis.call('GET', KEYS[2]) or '0') ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// NewRedisClient opens a client for the given address. Connectivity is checked lazily.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// DashboardCache keeps the admin dashboard in Redis and drops it whenever
// donors, donations or requests change. Each invalidation bumps a
// generation counter; a dashboard read before the bump cannot be stored
// after it.
type DashboardCache struct {
	c   *redis.Client
	ttl time.Duration
}

func NewDashboardCache(c *redis.Client, ttl time.Duration) *DashboardCache {
	return &DashboardCache{c: c, ttl: ttl}
}

func (d *DashboardCache) Get(ctx context.Context) (*utils.Dashboard, error) {
	val, err := d.c.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrMiss
		}
		return nil, err
	}
	var dash utils.Dashboard
	if err := json.Unmarshal(val, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

// Generation returns the current invalidation counter. Read it before
// loading the data passed to Set.
func (d *DashboardCache) Generation(ctx context.Context) (int64, error) {
	gen, err := d.c.Get(ctx, generationKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// Set stores dash unless the cache was invalidated after gen was read, in
// which case it returns ErrStale.
func (d *DashboardCache) Set(ctx context.Context, dash *utils.Dashboard, gen int64) error {
	val, err := json.Marshal(dash)
	if err != nil {
		return err
	}
	stored, err := setIfCurrent.Run(ctx, d.c, []string{dashboardKey, generationKey},
		strconv.FormatInt(gen, 10), val, d.ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if stored == 0 {
		return ErrStale
	}
	return nil
}

func (d *DashboardCache) Invalidate(ctx context.Context) error {
	_, err := d.c.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, dashboardKey)
		return nil
	})
	return err
}

// OnChange drops the cached dashboard; every tracked mutation can move its numbers.
func (d *DashboardCache) OnChange(ctx context.Context, ev domain.ChangeEvent) {
	if err := d.Invalidate(ctx); err != nil {
		logger.Warn("Failed to invalidate dashboard cache", "kind", ev.Kind, "id", ev.ID, "error", err)
		return
	}
	logger.Debug("Dashboard cache invalidated", "kind", ev.Kind, "id", ev.ID, "op", ev.Op)
}

func (d *DashboardCache) Ping(ctx context.Context) error {
	return d.c.Ping(ctx).Err()
}
