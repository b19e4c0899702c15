package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"exam-quiz-service/internal/app"
	"exam-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

const poolKey = "pool"

// QuestionCache keeps the question pool in process with a TTL to avoid a store
// read on every assignment. Writes go through to the backing repository and
// drop the cached pool.
type QuestionCache struct {
	backing app.QuestionRepository
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu        sync.RWMutex
	pool      []domain.Question
	expiresAt time.Time

	// generation is bumped by every Invalidate; a fill that started under an
	// older generation is not stored.
	generation uint64
}

func NewQuestionCache(backing app.QuestionRepository, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		backing: backing,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	pool, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		out = append(out, cloneQuestion(q))
	}
	return out, nil
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
			out[q.ID] = cloneQuestion(q)
		}
	}
	return out, nil
}

func (c *QuestionCache) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	return c.backing.GetQuestion(ctx, id)
}

func (c *QuestionCache) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	defer c.Invalidate()
	return c.backing.CreateQuestion(ctx, q)
}

func (c *QuestionCache) UpdateQuestion(ctx context.Context, q domain.Question) error {
	defer c.Invalidate()
	return c.backing.UpdateQuestion(ctx, q)
}

func (c *QuestionCache) DeleteQuestion(ctx context.Context, id string) error {
	defer c.Invalidate()
	return c.backing.DeleteQuestion(ctx, id)
}

// Invalidate drops the cached pool.
func (c *QuestionCache) Invalidate() {
	c.mu.Lock()
	c.pool = nil
	c.expiresAt = time.Time{}
	c.generation++
	c.mu.Unlock()
}

func (c *QuestionCache) load(ctx context.Context) ([]domain.Question, error) {
	c.mu.RLock()
	if c.pool != nil && c.expiresAt.After(c.clock()) {
		pool := c.pool
		c.mu.RUnlock()
		return pool, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(poolKey, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.pool != nil && c.expiresAt.After(now) {
			pool := c.pool
			c.mu.RUnlock()
			return pool, nil
		}
		generation := c.generation
		c.mu.RUnlock()

		pool, err := c.backing.ListQuestions(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generation == generation {
			c.pool = pool
			c.expiresAt = now.Add(c.ttlWithJitter())
		}
		c.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
