package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"exam-quiz-service/internal/app"
	"exam-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	// PoolKey holds the JSON-encoded question pool.
	PoolKey = "quiz:questions:pool"
	// GenerationKey is incremented by every invalidation. A fill only stores the
	// pool if the generation it read before loading is still current.
	GenerationKey = "quiz:questions:generation"
)

var errStaleFill = errors.New("question pool changed during fill")

// QuestionCache caches the question pool in Redis and falls back to the
// backing repository on a miss. Writes go through and delete the cached pool,
// so every instance sees admin edits on its next read.
type QuestionCache struct {
	client  *redis.Client
	backing app.QuestionRepository
	ttl     time.Duration
	sf      singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionCache(client *redis.Client, backing app.QuestionRepository, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return c.load(ctx)
}

func (c *QuestionCache) GetQuestions(ctx context.Context, ids []string) (map[string]domain.Question, error) {
	pool, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make(map[string]domain.Question, len(ids))
	for _, q := range pool {
		if _, ok := want[q.ID]; ok {
			out[q.ID] = q
		}
	}
	return out, nil
}

func (c *QuestionCache) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	return c.backing.GetQuestion(ctx, id)
}

func (c *QuestionCache) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	created, err := c.backing.CreateQuestion(ctx, q)
	if err != nil {
		return domain.Question{}, err
	}
	return created, c.Invalidate(ctx)
}

func (c *QuestionCache) UpdateQuestion(ctx context.Context, q domain.Question) error {
	if err := c.backing.UpdateQuestion(ctx, q); err != nil {
		return err
	}
	return c.Invalidate(ctx)
}

func (c *QuestionCache) DeleteQuestion(ctx context.Context, id string) error {
	if err := c.backing.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	return c.Invalidate(ctx)
}

// Invalidate bumps the generation and deletes the cached pool.
func (c *QuestionCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey)
		pipe.Del(ctx, PoolKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate question cache: %w", err)
	}
	return nil
}

func (c *QuestionCache) load(ctx context.Context) ([]domain.Question, error) {
	if pool, ok := c.cached(ctx); ok {
		return pool, nil
	}

	result, err, _ := c.sf.Do(PoolKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if pool, ok := c.cached(ctx); ok {
			return pool, nil
		}

		generation, genErr := c.generation(ctx)
		pool, err := c.backing.ListQuestions(ctx)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			return pool, nil
		}
		data, err := json.Marshal(pool)
		if err != nil {
			return nil, fmt.Errorf("encode question pool: %w", err)
		}
		// best-effort fill; a failed or stale write only costs the next reader a store hit
		_ = c.store(ctx, generation, data)
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	// each caller gets its own slice since assignment shuffles in place
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

func (c *QuestionCache) generation(ctx context.Context) (int64, error) {
	n, err := c.client.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// store writes the pool only while GenerationKey still holds generation.
func (c *QuestionCache) store(ctx context.Context, generation int64, data []byte) error {
	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, GenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, PoolKey, data, c.ttlWithJitter())
			return nil
		})
		return err
	}, GenerationKey)
}

func (c *QuestionCache) cached(ctx context.Context) ([]domain.Question, bool) {
	data, err := c.client.Get(ctx, PoolKey).Bytes()
	if err != nil {
		// redis.Nil or an unreachable cache both fall through to the store
		return nil, false
	}
	var pool []domain.Question
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, false
	}
	return pool, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
