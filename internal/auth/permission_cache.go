package auth

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PermissionCache 权限缓存
type PermissionCache struct {
	cache *sync.Map
	ttl   time.Duration
	now   func() time.Time
}

// cacheEntry 缓存条目
type cacheEntry struct {
	value     bool
	expiresAt time.Time
}

// NewPermissionCache 创建权限缓存
func NewPermissionCache(ttl time.Duration) *PermissionCache {
	return &PermissionCache{
		cache: &sync.Map{},
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get 获取缓存,过期条目会被删除
func (c *PermissionCache) Get(key string) (bool, bool) {
	val, found := c.cache.Load(key)
	if !found {
		return false, false
	}

	entry := val.(*cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.cache.Delete(key)
		return false, false
	}

	return entry.value, true
}

// Set 设置缓存
func (c *PermissionCache) Set(key string, value bool) {
	c.cache.Store(key, &cacheEntry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	})
}

// Delete 删除缓存
func (c *PermissionCache) Delete(key string) {
	c.cache.Delete(key)
}

// Clear 清空缓存
func (c *PermissionCache) Clear() {
	c.cache.Range(func(key, value interface{}) bool {
		c.cache.Delete(key)
		return true
	})
}

func permissionKey(userID, relation, objectType, objectID string) string {
	return fmt.Sprintf("user:%s:%s:%s:%s", userID, relation, objectType, objectID)
}

// CachedPermissionChecker 带缓存的权限检查,只缓存成功的判定结果
type CachedPermissionChecker struct {
	checker PermissionChecker
	cache   *PermissionCache
}

// NewCachedPermissionChecker 创建带缓存的权限检查
func NewCachedPermissionChecker(checker PermissionChecker, cache *PermissionCache) *CachedPermissionChecker {
	return &CachedPermissionChecker{
		checker: checker,
		cache:   cache,
	}
}

// CheckPermission 检查权限(带缓存)
func (c *CachedPermissionChecker) CheckPermission(
	ctx context.Context,
	userID string,
	relation string,
	objectType string,
	objectID string,
) (bool, error) {
	key := permissionKey(userID, relation, objectType, objectID)
	if value, found := c.cache.Get(key); found {
		return value, nil
	}

	allowed, err := c.checker.CheckPermission(ctx, userID, relation, objectType, objectID)
	if err != nil {
		return false, err
	}

	c.cache.Set(key, allowed)
	return allowed, nil
}

// Invalidate 关系变更后清除对应缓存
func (c *CachedPermissionChecker) Invalidate(userID, relation, objectType, objectID string) {
	c.cache.Delete(permissionKey(userID, relation, objectType, objectID))
}
