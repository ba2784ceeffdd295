package router

import (
	"net/http"
	"sort"
	"strings"

	"github.com/paygate-next/internal/authz"
	handlershared "github.com/paygate-next/internal/http/handlers/shared"
	"github.com/paygate-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// consoleRoute 控制台路由目录中的一项
type consoleRoute struct {
	Module  string `json:"module"`
	Method  string `json:"method"`
	Route   string `json:"route"`
	Granted bool   `json:"granted"`
}

// consoleRoutes 列出 /api/v1 下除公开接口外的路由，按模块、路由、方法排序
func consoleRoutes(engine *gin.Engine) []consoleRoute {
	routes := make([]consoleRoute, 0)
	seen := make(map[string]struct{})
	for _, info := range engine.Routes() {
		if info.Method == http.MethodOptions || info.Method == http.MethodHead {
			continue
		}
		if !strings.HasPrefix(info.Path, tenantAPIPrefix+"/") || strings.HasPrefix(info.Path, tenantAPIPrefix+"/public/") {
			continue
		}
		route := authz.RouteObject(info.Path)
		if _, dup := seen[info.Method+" "+route]; dup {
			continue
		}
		seen[info.Method+" "+route] = struct{}{}
		module, _, _ := strings.Cut(strings.TrimPrefix(route, "/"), "/")
		routes = append(routes, consoleRoute{Module: module, Method: info.Method, Route: route})
	}
	sort.Slice(routes, func(i, j int) bool {
		a, b := routes[i], routes[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Route != b.Route {
			return a.Route < b.Route
		}
		return a.Method < b.Method
	})
	return routes
}

// permissionsHandler 返回控制台路由目录，并标出当前操作员角色可访问的项
func permissionsHandler(engine *gin.Engine, authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		operator, ok := handlershared.CurrentOperator(c)
		if !ok {
			return
		}
		routes := consoleRoutes(engine)
		for i := range routes {
			allowed, err := authzService.Allow(operator.Role, routes[i].Route, routes[i].Method)
			if err != nil {
				handlershared.RespondError(c, response.CodeInternal, "error.internal", err)
				return
			}
			routes[i].Granted = allowed
		}
		response.Success(c, routes)
	}
}
