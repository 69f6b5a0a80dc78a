package memory

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/dig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Isolation(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	report := domain.NewReport("https://example.org", time.Now())
	report.Written = append(report.Written, "Alpha")
	require.NoError(t, s.Save(ctx, report))

	report.Written = append(report.Written, "Beta")

	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, got.Written)

	got.Skipped = append(got.Skipped, "Gamma")
	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, again.Skipped)
}

func TestLocker(t *testing.T) {
	ctx := context.Background()
	l := NewLocker()

	unlock, err := l.Lock(ctx, "build", time.Minute)
	require.NoError(t, err)

	_, err = l.Lock(ctx, "build", time.Minute)
	assert.ErrorIs(t, err, domain.ErrBuildInProgress)

	other, err := l.Lock(ctx, "other", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, unlock(ctx))
	require.NoError(t, unlock(ctx))

	unlock, err = l.Lock(ctx, "build", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = l.Lock(cancelled, "build", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
