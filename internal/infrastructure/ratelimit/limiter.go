// Package ratelimit provides request rate limiting for ingress endpoints.
package ratelimit

// Limiter decides whether a request identified by key may proceed.
// Implementations are best-effort: limiting bounds abuse per backend, it is
// not a globally consistent quota.
type Limiter interface {
	Allow(key string) bool
}
