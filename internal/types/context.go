package types

import "context"

type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxTenantID      ContextKey = "ctx_tenant_id"
	CtxEnvironmentID ContextKey = "ctx_environment_id"
	CtxCallerID      ContextKey = "ctx_caller_id"
)

const (
	DefaultTenantID      = "tenant_default"
	DefaultEnvironmentID = "env_default"
)

func GetTenantID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxTenantID).(string); ok {
		return id
	}
	return ""
}

func GetEnvironmentID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxEnvironmentID).(string); ok {
		return id
	}
	return ""
}

// GetCallerID returns the authenticated caller identity for the request.
// Every mutating operation checks this against the stored owner or authority
// rather than trusting the transport layer.
func GetCallerID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxCallerID).(string); ok {
		return id
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxRequestID).(string); ok {
		return id
	}
	return ""
}

func SetTenantID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxTenantID, id)
}

func SetEnvironmentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxEnvironmentID, id)
}

func SetCallerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxCallerID, id)
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxRequestID, id)
}
