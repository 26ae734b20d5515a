package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kinworks/kin-engine/pkg/models"
)

// TreeCache stores fully built family tree nodes keyed by person id.
// Entries are either absent or complete; a hit always returns a node that was
// fully built in a previous pass. Cache failures degrade to misses so a
// broken cache backend can never fail a tree query.
type TreeCache interface {
	Get(ctx context.Context, personID uuid.UUID) (*models.TreeNode, bool)
	Set(ctx context.Context, personID uuid.UUID, node *models.TreeNode)
	Delete(ctx context.Context, personID uuid.UUID)
}

// MemoryTreeCache is the process-local cache backend. It is an explicit
// object constructed once at startup and injected into the tree service,
// never a package-level global.
type MemoryTreeCache struct {
	mu    sync.RWMutex
	nodes map[uuid.UUID]*models.TreeNode
}

// NewMemoryTreeCache creates an empty in-memory tree cache.
func NewMemoryTreeCache() *MemoryTreeCache {
	return &MemoryTreeCache{
		nodes: make(map[uuid.UUID]*models.TreeNode),
	}
}

var _ TreeCache = (*MemoryTreeCache)(nil)

func (c *MemoryTreeCache) Get(ctx context.Context, personID uuid.UUID) (*models.TreeNode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	node, ok := c.nodes[personID]
	return node, ok
}

func (c *MemoryTreeCache) Set(ctx context.Context, personID uuid.UUID, node *models.TreeNode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes[personID] = node
}

func (c *MemoryTreeCache) Delete(ctx context.Context, personID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.nodes, personID)
}

// RedisTreeCache backs the tree cache with Redis so multiple processes share
// one invalidation domain. Nodes are stored as JSON under a key per person.
type RedisTreeCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTreeCache creates a Redis-backed tree cache.
func NewRedisTreeCache(client *redis.Client, logger *zap.Logger) *RedisTreeCache {
	return &RedisTreeCache{
		client: client,
		logger: logger,
	}
}

var _ TreeCache = (*RedisTreeCache)(nil)

func treeCacheKey(personID uuid.UUID) string {
	return "kin:tree:" + personID.String()
}

func (c *RedisTreeCache) Get(ctx context.Context, personID uuid.UUID) (*models.TreeNode, bool) {
	data, err := c.client.Get(ctx, treeCacheKey(personID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Tree cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var node models.TreeNode
	if err := json.Unmarshal(data, &node); err != nil {
		c.logger.Warn("Tree cache entry corrupt, treating as miss", zap.Error(err))
		return nil, false
	}

	return &node, true
}

func (c *RedisTreeCache) Set(ctx context.Context, personID uuid.UUID, node *models.TreeNode) {
	data, err := json.Marshal(node)
	if err != nil {
		c.logger.Warn("Tree cache encode failed", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, treeCacheKey(personID), data, 0).Err(); err != nil {
		c.logger.Warn("Tree cache write failed", zap.Error(err))
	}
}

func (c *RedisTreeCache) Delete(ctx context.Context, personID uuid.UUID) {
	if err := c.client.Del(ctx, treeCacheKey(personID)).Err(); err != nil {
		c.logger.Warn("Tree cache delete failed", zap.Error(err))
	}
}
