package cache

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
	"github.com/SAP-F-2025/quiz-portal/internal/utils"
	"golang.org/x/sync/singleflight"
)

// CachedQuizRepository reads quiz definitions through Redis. Quizzes are
// immutable, so the only invalidation needed is on delete. Scans go straight
// to the underlying store.
type CachedQuizRepository struct {
	repositories.QuizRepository

	cache  CacheService
	logger utils.Logger
	ttl    time.Duration
	sf     singleflight.Group

	mu      sync.Mutex
	rnd     *rand.Rand
	deleted map[string]struct{}
}

func NewCachedQuizRepository(next repositories.QuizRepository, cache CacheService, ttl time.Duration, logger utils.Logger) *CachedQuizRepository {
	return &CachedQuizRepository{
		QuizRepository: next,
		cache:          cache,
		logger:         logger,
		ttl:            ttl,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
		deleted:        make(map[string]struct{}),
	}
}

func quizKey(id string) string {
	return "quiz:" + id
}

func (r *CachedQuizRepository) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.cache.Get(ctx, quizKey(id), &quiz)
	if err == nil {
		return &quiz, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn("Quiz cache read failed, using store", "quiz_id", id, "error", err)
	}

	// The load is shared by every waiter, so one caller going away must not
	// cancel it for the rest.
	loadCtx := context.WithoutCancel(ctx)
	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		loaded, err := r.QuizRepository.GetByID(loadCtx, id)
		if err != nil {
			return nil, err
		}
		if r.isDeleted(id) {
			return nil, repositories.ErrNotFound
		}
		if err := r.cache.Set(loadCtx, quizKey(id), loaded, r.ttlWithJitter()); err != nil {
			r.logger.Warn("Quiz cache write failed", "quiz_id", id, "error", err)
		}
		// A delete may have run between the load and the write above.
		if r.isDeleted(id) {
			r.invalidate(loadCtx, id)
			return nil, repositories.ErrNotFound
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Quiz), nil
}

func (r *CachedQuizRepository) Delete(ctx context.Context, id string) error {
	if err := r.QuizRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.mu.Lock()
	r.deleted[id] = struct{}{}
	r.mu.Unlock()
	r.sf.Forget(id)
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedQuizRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, quizKey(id)); err != nil {
		r.logger.Warn("Quiz cache invalidation failed", "quiz_id", id, "error", err)
	}
}

// Quiz ids are never reused, so a deleted id stays deleted.
func (r *CachedQuizRepository) isDeleted(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.deleted[id]
	return ok
}

func (r *CachedQuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

type cachedRepository struct {
	repositories.Repository
	quizzes repositories.QuizRepository
}

func (r *cachedRepository) Quiz() repositories.QuizRepository { return r.quizzes }

// WithQuizCache returns repo with quiz reads served through quizzes.
func WithQuizCache(repo repositories.Repository, quizzes *CachedQuizRepository) repositories.Repository {
	return &cachedRepository{Repository: repo, quizzes: quizzes}
}
