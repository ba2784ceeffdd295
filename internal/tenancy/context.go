package tenancy

import "context"

type scopeContextKey struct{}

// WithScope 将作用域写入请求上下文
func WithScope(ctx context.Context, scope Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// FromContext 读取请求上下文中的作用域，缺失时为未解析
func FromContext(ctx context.Context) Scope {
	if ctx == nil {
		return Unresolved()
	}
	if scope, ok := ctx.Value(scopeContextKey{}).(Scope); ok {
		return scope
	}
	return Unresolved()
}
