package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyCache fails every eviction call.
type faultyCache struct {
	deleteErr error
	prefixErr error
}

func (f *faultyCache) Get(context.Context, string) ([]byte, error) { return nil, ErrCacheMiss }
func (f *faultyCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (f *faultyCache) Delete(context.Context, string) error       { return f.deleteErr }
func (f *faultyCache) DeletePrefix(context.Context, string) error { return f.prefixErr }
func (f *faultyCache) Close() error                               { return nil }

func TestInvalidator_EvictsDetailAndListEntries(t *testing.T) {
	store := NewMemory(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, QuestionDetailKey("q-1"), []byte("detail"), 0))
	require.NoError(t, store.Set(ctx, QuestionListPrefix()+"?page=1", []byte("list"), 0))
	require.NoError(t, store.Set(ctx, "GET:/api/users/u-1", []byte("unrelated"), 0))

	logger, hook := logtest.NewNullLogger()
	NewInvalidator(store, logger).InvalidateQuestion(ctx, "q-1")

	_, err := store.Get(ctx, QuestionDetailKey("q-1"))
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = store.Get(ctx, QuestionListPrefix()+"?page=1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	unrelated, err := store.Get(ctx, "GET:/api/users/u-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("unrelated"), unrelated)

	assert.Empty(t, hook.Entries, "clean eviction logs nothing")
}

func TestInvalidator_FailedEvictionWarnsAndReturns(t *testing.T) {
	boom := errors.New("backend down")
	logger, hook := logtest.NewNullLogger()

	inv := NewInvalidator(&faultyCache{deleteErr: boom, prefixErr: boom}, logger)
	inv.InvalidateQuestion(context.Background(), "q-1")

	require.Len(t, hook.Entries, 2)
	for _, entry := range hook.Entries {
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, "q-1", entry.Data["question_id"])
		assert.ErrorIs(t, entry.Data[logrus.ErrorKey].(error), boom)
	}
}

func TestInvalidator_PartialFailureStillEvictsRest(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	inv := NewInvalidator(&faultyCache{deleteErr: errors.New("delete down")}, logger)
	inv.InvalidateQuestion(context.Background(), "q-1")

	// the prefix sweep still ran and only the single delete was reported
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[0].Level)
}
