package cachemanager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls int
	err   error
}

func (l *countingLoader) load(_ context.Context, path string) (fileStat, error) {
	l.calls++
	if l.err != nil {
		return fileStat{}, l.err
	}
	return fileStat{Exists: true, Size: int64(len(path))}, nil
}

func TestReadThroughCache_LoadsOnceThenHits(t *testing.T) {
	loader := &countingLoader{}
	rt := NewReadThroughCache[pathKey, fileStat, string](newStatCache(), loader.load, false)
	ctx := context.Background()

	first, err := rt.Get(ctx, "k", "/p/top.v", DefaultExpiration)
	require.NoError(t, err)
	second, err := rt.Get(ctx, "k", "/p/top.v", DefaultExpiration)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, int64(8), first.Size)
	require.Equal(t, 1, loader.calls)
}

func TestReadThroughCache_SkipCacheAlwaysLoads(t *testing.T) {
	loader := &countingLoader{}
	rt := NewReadThroughCache[pathKey, fileStat, string](newStatCache(), loader.load, true)
	ctx := context.Background()

	_, _ = rt.Get(ctx, "k", "x", DefaultExpiration)
	_, _ = rt.Get(ctx, "k", "x", DefaultExpiration)
	require.Equal(t, 2, loader.calls)
}

func TestReadThroughCache_ErrorsAreNotCached(t *testing.T) {
	loader := &countingLoader{err: errors.New("permission denied")}
	rt := NewReadThroughCache[pathKey, fileStat, string](newStatCache(), loader.load, false)
	ctx := context.Background()

	_, err := rt.Get(ctx, "k", "x", DefaultExpiration)
	require.Error(t, err)

	loader.err = nil
	got, err := rt.Get(ctx, "k", "x", DefaultExpiration)
	require.NoError(t, err)
	require.True(t, got.Exists)
	require.Equal(t, 2, loader.calls)
}
