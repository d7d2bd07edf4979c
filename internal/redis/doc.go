// Package redis provides Redis connectivity and the vote rate limiter.
//
// The rate limiter is a token bucket evaluated by a Lua script, so the
// read-refill-consume sequence is atomic on the Redis side and safe to
// call from any number of service instances.
package redis
