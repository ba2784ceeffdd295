package tenancy

import (
	"context"
	"net"
	"strings"

	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/metrics"
	"github.com/paygate-next/internal/models"
)

// TenantLookup 按子域名查找启用中的租户
type TenantLookup interface {
	GetActiveBySubdomain(subdomain string) (*models.Tenant, error)
}

// RouteCache 跨请求的子域名路由缓存（带过期与失效）
type RouteCache interface {
	LookupTenantRoute(ctx context.Context, subdomain string) (tenantID uint, active bool, hit bool, err error)
	StoreTenantRoute(ctx context.Context, subdomain string, tenantID uint, active bool) error
}

// Resolver 租户上下文解析器，本身不保存任何请求级状态
type Resolver struct {
	tenants TenantLookup
	routes  RouteCache
}

// NewResolver 创建解析器；routes 可为 nil
func NewResolver(tenants TenantLookup, routes RouteCache) *Resolver {
	return &Resolver{tenants: tenants, routes: routes}
}

// ExtractSubdomain 从 host 中取子域名：至少三段时取第一段（小写），否则为空
func ExtractSubdomain(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if net.ParseIP(host) != nil {
		return ""
	}
	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return ""
	}
	sub := strings.ToLower(strings.TrimSpace(labels[0]))
	if sub == "" {
		return ""
	}
	return sub
}

// Resolve 将 host 解析为作用域；只有存储故障才返回错误
func (r *Resolver) Resolve(ctx context.Context, host string) (Scope, error) {
	subdomain := ExtractSubdomain(host)
	if subdomain == "" {
		metrics.ObserveResolution("unresolved")
		return Unresolved(), nil
	}

	if r.routes != nil {
		tenantID, active, hit, err := r.routes.LookupTenantRoute(ctx, subdomain)
		if err != nil {
			logger.Warnw("tenant_route_cache_get_failed", "subdomain", subdomain, "error", err)
		} else if hit {
			metrics.ObserveResolution("cache_hit")
			if !active || tenantID == 0 {
				return Unresolved(), nil
			}
			return Resolved(tenantID), nil
		}
	}

	if r.tenants == nil {
		metrics.ObserveResolution("unresolved")
		return Unresolved(), nil
	}
	tenant, err := r.tenants.GetActiveBySubdomain(subdomain)
	if err != nil {
		metrics.ObserveResolution("error")
		return Unresolved(), err
	}

	var tenantID uint
	if tenant != nil {
		tenantID = tenant.ID
	}
	if r.routes != nil {
		if err := r.routes.StoreTenantRoute(ctx, subdomain, tenantID, tenant != nil); err != nil {
			logger.Warnw("tenant_route_cache_set_failed", "subdomain", subdomain, "error", err)
		}
	}
	if tenantID == 0 {
		metrics.ObserveResolution("unresolved")
		return Unresolved(), nil
	}
	metrics.ObserveResolution("resolved")
	return Resolved(tenantID), nil
}
