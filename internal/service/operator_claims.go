package service

import (
	"errors"
	"strings"
	"time"

	"github.com/paygate-next/internal/constants"

	"github.com/golang-jwt/jwt/v5"
)

// OperatorClaims 租户操作员令牌声明（由外部认证服务签发）
type OperatorClaims struct {
	UserID   uint   `json:"uid"`
	TenantID uint   `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// ErrOperatorClaimsInvalid 令牌声明不完整
var ErrOperatorClaimsInvalid = errors.New("operator claims are invalid")

// IsKnownOperatorRole 是否为内置操作员角色
func IsKnownOperatorRole(role string) bool {
	switch strings.TrimSpace(role) {
	case constants.OperatorRoleAdmin, constants.OperatorRoleUser:
		return true
	default:
		return false
	}
}

// SignOperatorToken 签发 HS256 操作员令牌（种子数据与测试使用）
func SignOperatorToken(secret string, claims OperatorClaims, ttl time.Duration) (string, error) {
	if strings.TrimSpace(secret) == "" || claims.UserID == 0 || claims.TenantID == 0 || !IsKnownOperatorRole(claims.Role) {
		return "", ErrOperatorClaimsInvalid
	}
	now := time.Now()
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseOperatorToken 校验并解析操作员令牌
func ParseOperatorToken(secret, tokenString string) (*OperatorClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &OperatorClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 || claims.TenantID == 0 || !IsKnownOperatorRole(claims.Role) {
		return nil, ErrOperatorClaimsInvalid
	}
	return claims, nil
}
