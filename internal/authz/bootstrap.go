package authz

import (
	"net/http"

	"github.com/paygate-next/internal/constants"
)

// RoleSeed 内置角色：自身授权加上继承的角色
type RoleSeed struct {
	Role     string
	Inherits []string
	Grants   []Grant
}

func get(route string) Grant  { return Grant{Route: route, Method: http.MethodGet} }
func post(route string) Grant { return Grant{Route: route, Method: http.MethodPost} }

// BuiltinRoleSeeds 租户操作员角色矩阵：
// tenant_user 可查看并发起支付、退款、撤销；tenant_admin 额外管理设置与支付账户
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.OperatorRoleUser,
			Grants: []Grant{
				get("/tenant"),
				get("/tenant/settings"),
				get("/tenant/permissions"),
				get("/payment-accounts"),
				get("/payment-accounts/:id"),
				get("/transactions"),
				get("/transactions/:transaction_id"),
				post("/transactions/process"),
				post("/transactions/:transaction_id/refund"),
				post("/transactions/:transaction_id/cancel"),
			},
		},
		{
			Role:     constants.OperatorRoleAdmin,
			Inherits: []string{constants.OperatorRoleUser},
			Grants: []Grant{
				{Route: "/tenant/settings", Method: http.MethodPut},
				post("/tenant/deactivate"),
				post("/payment-accounts"),
				{Route: "/payment-accounts/:id", Method: http.MethodDelete},
			},
		},
	}
}

// Seed 写入角色与授权，重复执行结果不变
func (s *Service) Seed(seeds []RoleSeed) error {
	for _, seed := range seeds {
		for _, parent := range seed.Inherits {
			if err := s.Inherit(seed.Role, parent); err != nil {
				return err
			}
		}
		for _, grant := range seed.Grants {
			if err := s.Permit(seed.Role, grant); err != nil {
				return err
			}
		}
	}
	return nil
}

// BootstrapBuiltinRoles 启动时写入内置操作员角色
func (s *Service) BootstrapBuiltinRoles() error {
	return s.Seed(BuiltinRoleSeeds())
}
