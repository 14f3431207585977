package jobrunner

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/glyphlang/glyph/pkg/cache"
	"github.com/glyphlang/glyph/pkg/ir"
	"github.com/glyphlang/glyph/pkg/redis"
)

// ArtifactCache maps a job's IR+config fingerprint to a previously
// generated artifact, so resubmitting an unchanged job skips regeneration.
type ArtifactCache struct {
	local *cache.LRUCache
	redis redis.Redis
	ttl   time.Duration
}

// NewLocalArtifactCache builds an ArtifactCache backed by the in-process
// LRU cache (no external dependency needed for a single-process runner).
func NewLocalArtifactCache(ttl time.Duration) *ArtifactCache {
	return &ArtifactCache{local: cache.NewLRUCache(), ttl: ttl}
}

// NewRedisArtifactCache builds an ArtifactCache backed by a shared Redis
// instance, so multiple job-runner processes share one artifact cache.
func NewRedisArtifactCache(client redis.Redis, ttl time.Duration) *ArtifactCache {
	return &ArtifactCache{redis: client, ttl: ttl}
}

// FingerprintKey hashes a job's declarations and config into a stable
// cache key. ir.SymDecl has no canonical text form of its own, so this
// hashes the decls' %#v representation - cheap, deterministic within a
// process, and exactly as much precision as a cache key needs.
func FingerprintKey(decls []ir.SymDecl, cfg ir.JobConfig) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%#v", cfg.FileName, cfg.MainClassName, decls)
	return fmt.Sprintf("glyphgen:artifact:%x", h.Sum64())
}

// Get returns the cached artifact for key, if present and not expired.
func (a *ArtifactCache) Get(ctx context.Context, key string) (string, bool) {
	if a.redis != nil {
		val, err := a.redis.Get(ctx, key)
		if err != nil {
			return "", false
		}
		return val, true
	}
	v, ok := a.local.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Put stores an artifact under key, subject to the cache's configured TTL.
func (a *ArtifactCache) Put(ctx context.Context, key, artifact string) error {
	if a.redis != nil {
		return a.redis.Set(ctx, key, artifact, a.ttl)
	}
	return a.local.Set(key, artifact, a.ttl)
}
