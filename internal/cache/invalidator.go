package cache

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Invalidator evicts the cached read paths touched by a mutation. Eviction
// failures never fail the mutation; they are logged so a stale entry shows
// up in diagnostics instead of vanishing silently.
type Invalidator struct {
	cache  Cache
	logger *logrus.Logger
}

func NewInvalidator(c Cache, logger *logrus.Logger) *Invalidator {
	return &Invalidator{cache: c, logger: logger}
}

// InvalidateQuestion evicts the question's singleton entry and, via the
// shared prefix, every listing variant. The prefix also covers other
// question detail keys; over-eviction costs a re-read, never staleness.
func (i *Invalidator) InvalidateQuestion(ctx context.Context, id string) {
	if err := i.cache.Delete(ctx, QuestionDetailKey(id)); err != nil {
		i.logger.WithError(err).WithField("question_id", id).Warn("cache eviction failed")
	}
	if err := i.cache.DeletePrefix(ctx, QuestionListPrefix()); err != nil {
		i.logger.WithError(err).WithField("question_id", id).Warn("cache list eviction failed")
	}
}
