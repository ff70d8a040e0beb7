package memory

import (
	"context"
	"math/rand"
	"slices"
	"sync"
	"time"

	"category-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a category's questions from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, category domain.Category) ([]domain.Question, error)
}

// QuestionRepository caches question sets per category with TTL to avoid repeated DB hits.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[domain.Category]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[domain.Category]cachedQuestions),
	}
}

// QuestionsByCategory returns a copy of the category's questions; callers may shuffle it freely.
func (r *QuestionRepository) QuestionsByCategory(ctx context.Context, category domain.Category) ([]domain.Question, error) {
	if qs, ok := r.cached(category, r.clock()); ok {
		return qs, nil
	}

	result, err, _ := r.sf.Do(string(category), func() (interface{}, error) {
		now := r.clock()
		if qs, ok := r.cached(category, now); ok {
			return qs, nil
		}

		qs, err := r.loader.LoadQuestions(ctx, category)
		if err != nil {
			return nil, err
		}

		expiresAt := now.Add(r.ttlWithJitter())
		r.mu.Lock()
		r.cache[category] = cachedQuestions{questions: qs, expiresAt: expiresAt}
		r.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(result.([]domain.Question)), nil
}

func (r *QuestionRepository) cached(category domain.Category, now time.Time) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[category]; ok && entry.expiresAt.After(now) {
		return slices.Clone(entry.questions), true
	}
	return nil, false
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader is a simple loader backed by an in-memory slice (useful for tests/demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context, category domain.Category) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range l.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out, nil
}
