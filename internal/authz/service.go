// Package authz 以 casbin 判定租户操作员能否访问某个控制台路由。
// 主体是令牌里的角色，资源是去掉 /api/v1 前缀的 gin 路由模板，动作是 HTTP 方法。
package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	routePrefix = "/api/v1"
	policyTable = "casbin_rule"
	roleSubject = "role:"
)

// ErrUnavailable 授权服务未初始化
var ErrUnavailable = errors.New("authz service unavailable")

// g 记录角色继承；同名角色直接匹配，路由模板交给 keyMatch2
const operatorModel = `
[request_definition]
r = role, route, method

[policy_definition]
p = role, route, method

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (r.role == p.role || g(r.role, p.role)) && keyMatch2(r.route, p.route) && (p.method == "*" || r.method == p.method)
`

// Grant 一条路由授权
type Grant struct {
	Route  string `json:"route"`
	Method string `json:"method"`
}

// Service 操作员路由授权
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 使用业务库中的 casbin_rule 表构建授权服务
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, errors.New("authz db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", policyTable)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter: %w", err)
	}
	m, err := model.NewModelFromString(operatorModel)
	if err != nil {
		return nil, fmt.Errorf("parse authz model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("create authz enforcer: %w", err)
	}
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	return nil
}

// Allow 判断角色能否以 method 访问 route（可带 /api/v1 前缀，也可是具体路径）
func (s *Service) Allow(role, route, method string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	subject, err := RoleSubject(role)
	if err != nil {
		return false, err
	}
	return s.enforcer.Enforce(subject, RouteObject(route), strings.ToUpper(strings.TrimSpace(method)))
}

// Permit 为角色授予一条路由授权，已存在时无操作
func (s *Service) Permit(role string, grant Grant) error {
	if err := s.ready(); err != nil {
		return err
	}
	subject, err := RoleSubject(role)
	if err != nil {
		return err
	}
	method := strings.ToUpper(strings.TrimSpace(grant.Method))
	if method == "" {
		return fmt.Errorf("grant %s: method is required", grant.Route)
	}
	if _, err := s.enforcer.AddPolicy(subject, RouteObject(grant.Route), method); err != nil {
		return fmt.Errorf("permit %s %s %s: %w", subject, method, grant.Route, err)
	}
	return nil
}

// Inherit 让 role 继承 parent 的全部授权
func (s *Service) Inherit(role, parent string) error {
	if err := s.ready(); err != nil {
		return err
	}
	child, err := RoleSubject(role)
	if err != nil {
		return err
	}
	base, err := RoleSubject(parent)
	if err != nil {
		return err
	}
	if _, err := s.enforcer.AddGroupingPolicy(child, base); err != nil {
		return fmt.Errorf("link %s to %s: %w", child, base, err)
	}
	return nil
}

// Grants 列出角色的有效授权（含继承），按路由与方法排序
func (s *Service) Grants(role string) ([]Grant, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	subject, err := RoleSubject(role)
	if err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetImplicitPermissionsForUser(subject)
	if err != nil {
		return nil, fmt.Errorf("list grants for %s: %w", subject, err)
	}
	seen := make(map[Grant]struct{}, len(rules))
	grants := make([]Grant, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		g := Grant{Route: rule[1], Method: rule[2]}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		grants = append(grants, g)
	}
	sort.Slice(grants, func(i, j int) bool {
		if grants[i].Route != grants[j].Route {
			return grants[i].Route < grants[j].Route
		}
		return grants[i].Method < grants[j].Method
	})
	return grants, nil
}

// RoleSubject 把令牌里的角色名转换为 casbin 主体 role:<name>
func RoleSubject(role string) (string, error) {
	name := strings.TrimPrefix(strings.TrimSpace(role), roleSubject)
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if name == "" {
		return "", errors.New("role is required")
	}
	return roleSubject + name, nil
}

// RouteObject 把请求路径或路由模板转换为授权资源，统一去掉 /api/v1 前缀
func RouteObject(route string) string {
	object := strings.TrimSpace(route)
	if !strings.HasPrefix(object, "/") {
		object = "/" + object
	}
	switch {
	case object == routePrefix:
		return "/"
	case strings.HasPrefix(object, routePrefix+"/"):
		return object[len(routePrefix):]
	}
	return object
}
