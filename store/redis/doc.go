// Package redis implements workflow.Store on Redis. Workflow
// definitions and run records are stored as Hashes; runs are indexed in
// Sorted Sets scored by start time so history listings come back newest
// first without client-side sorting.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	s := redisstore.New(client)
//	if err := s.Ping(ctx); err != nil { ... }
package redis
