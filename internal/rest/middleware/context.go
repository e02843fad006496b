package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/subledger/subledger/internal/types"
)

// RequestIDMiddleware attaches a request ID to the context, reusing the
// client-supplied X-Request-ID when present.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Header(types.HeaderRequestID, requestID)
	c.Next()
}

// TenantMiddleware resolves the tenant and environment scope for the request
// from headers, falling back to the defaults for single-tenant deployments.
func TenantMiddleware(c *gin.Context) {
	tenantID := c.GetHeader(types.HeaderTenant)
	if tenantID == "" {
		tenantID = types.DefaultTenantID
	}
	environmentID := c.GetHeader(types.HeaderEnvironment)
	if environmentID == "" {
		environmentID = types.DefaultEnvironmentID
	}

	ctx := types.SetTenantID(c.Request.Context(), tenantID)
	ctx = types.SetEnvironmentID(ctx, environmentID)
	c.Request = c.Request.WithContext(ctx)

	c.Set("tenant_id", tenantID)
	c.Set("environment_id", environmentID)
	c.Next()
}
