package types

const (
	HeaderTenant        = "X-Tenant-ID"
	HeaderEnvironment   = "X-Environment-ID"
	HeaderRequestID     = "X-Request-ID"
	HeaderAuthorization = "Authorization"
)
