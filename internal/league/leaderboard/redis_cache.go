package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/prediction-league/internal/league"
)

// RedisCache guarda o leaderboard serializado em JSON com TTL.
// Cada torneio tem um contador de geração (sem TTL) e os dados ficam em league:leaderboard:<id>:<geração>.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

func genKey(tournamentID string) string { return "league:leaderboard:" + tournamentID + ":gen" }

func key(tournamentID string, gen int64) string {
	return "league:leaderboard:" + tournamentID + ":" + strconv.FormatInt(gen, 10)
}

func (r *RedisCache) Generation(ctx context.Context, tournamentID string) (int64, error) {
	gen, err := r.Client.Get(ctx, genKey(tournamentID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *RedisCache) Get(ctx context.Context, tournamentID string, gen int64) ([]league.Standing, bool, error) {
	b, err := r.Client.Get(ctx, key(tournamentID, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []league.Standing
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (r *RedisCache) Set(ctx context.Context, tournamentID string, gen int64, standings []league.Standing) error {
	b, err := json.Marshal(standings)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(tournamentID, gen), b, r.TTL).Err()
}

// Invalidate avança a geração; a entrada antiga expira sozinha pelo TTL
func (r *RedisCache) Invalidate(ctx context.Context, tournamentID string) error {
	return r.Client.Incr(ctx, genKey(tournamentID)).Err()
}
