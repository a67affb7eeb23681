package common

// ServiceName is used as the gRPC health service name and the metrics namespace.
const ServiceName = "wastehub"

// RequestIDHeader carries the request id assigned by the HTTP router.
const RequestIDHeader = "X-Request-Id"
