package vivado

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/Seradorr/migrations/internal/cachemanager"
	"github.com/Seradorr/migrations/internal/pathalg"
)

// sourceStat is what the relocation needs to know about a source path.
type sourceStat struct {
	Exists bool
	IsDir  bool
}

// statCache memoizes stats of source paths. Sources are read-only during a
// run, so entries never need invalidating; target paths must not go here.
type statCache struct {
	rt *cachemanager.ReadThroughCache[string, sourceStat, string]
}

func newStatCache(skip bool) *statCache {
	mgr := cachemanager.NewInMemoryCacheManager[string, sourceStat]("source-stat",
		cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	return &statCache{rt: cachemanager.NewReadThroughCache[string, sourceStat, string](mgr, loadStat, skip)}
}

func loadStat(_ context.Context, path string) (sourceStat, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return sourceStat{}, nil
	}
	if err != nil {
		return sourceStat{}, err
	}
	return sourceStat{Exists: true, IsDir: info.IsDir()}, nil
}

// stat treats unreadable paths as missing.
func (c *statCache) stat(ctx context.Context, path string) sourceStat {
	st, err := c.rt.Get(ctx, pathalg.Normalize(path), path, cachemanager.DefaultExpiration)
	if err != nil {
		return sourceStat{}
	}
	return st
}

func (c *statCache) isFile(ctx context.Context, path string) bool {
	st := c.stat(ctx, path)
	return st.Exists && !st.IsDir
}
