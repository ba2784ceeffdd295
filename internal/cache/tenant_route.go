package cache

import (
	"context"
	"strings"
	"time"
)

const tenantRouteKeyPrefix = "tenant_route:"

// DefaultTenantRouteTTL 子域名路由缓存默认有效期
const DefaultTenantRouteTTL = 60 * time.Second

// TenantRoute 子域名路由缓存条目（未找到的子域名以 IsActive=false 记录）
type TenantRoute struct {
	TenantID uint `json:"tenant_id"`
	IsActive bool `json:"is_active"`
}

func tenantRouteKey(subdomain string) string {
	return tenantRouteKeyPrefix + strings.ToLower(strings.TrimSpace(subdomain))
}

// GetTenantRoute 读取子域名路由
func GetTenantRoute(ctx context.Context, subdomain string) (*TenantRoute, error) {
	var route TenantRoute
	hit, err := GetJSON(ctx, tenantRouteKey(subdomain), &route)
	if err != nil || !hit {
		return nil, err
	}
	return &route, nil
}

// SetTenantRoute 写入子域名路由
func SetTenantRoute(ctx context.Context, subdomain string, route TenantRoute, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTenantRouteTTL
	}
	return SetJSON(ctx, tenantRouteKey(subdomain), route, ttl)
}

// DelTenantRoute 删除子域名路由
func DelTenantRoute(ctx context.Context, subdomain string) error {
	return Del(ctx, tenantRouteKey(subdomain))
}

// TenantRouteCache 基于 Redis 的租户路由缓存
type TenantRouteCache struct {
	TTL time.Duration
}

// NewTenantRouteCache 创建租户路由缓存
func NewTenantRouteCache(ttl time.Duration) *TenantRouteCache {
	return &TenantRouteCache{TTL: ttl}
}

// LookupTenantRoute 查询缓存；Redis 未启用时总是未命中
func (c *TenantRouteCache) LookupTenantRoute(ctx context.Context, subdomain string) (uint, bool, bool, error) {
	route, err := GetTenantRoute(ctx, subdomain)
	if err != nil || route == nil {
		return 0, false, false, err
	}
	return route.TenantID, route.IsActive, true, nil
}

// StoreTenantRoute 写入缓存
func (c *TenantRouteCache) StoreTenantRoute(ctx context.Context, subdomain string, tenantID uint, active bool) error {
	return SetTenantRoute(ctx, subdomain, TenantRoute{TenantID: tenantID, IsActive: active}, c.TTL)
}

// InvalidateTenantRoute 租户创建/启停后失效缓存
func (c *TenantRouteCache) InvalidateTenantRoute(ctx context.Context, subdomain string) error {
	return DelTenantRoute(ctx, subdomain)
}
