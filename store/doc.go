// Package store defines the persistence boundary for ranked exceptions.
//
// A [Store] holds two structures that are always written together:
//
//   - a field-bag per key: field name to text value, e.g.
//     "WorkflowException:42" → {ItemNumber, DaysInQueue, OrderPriority, NeedByDate, tags}
//   - named ranked indexes mapping keys to float scores, readable by score
//     range in ascending order.
//
// UpsertRanked performs both writes in one backend transaction so the two
// never drift apart, and replaying it is always safe.
//
// # Available Backends
//
//   - store/memory: in-memory store for development and testing
//   - store/redis: Redis hashes and sorted sets via go-redis
//   - store/postgres: PostgreSQL via pgx/v5
//   - store/mongo: MongoDB via mongo-driver v2
//
// # Usage
//
//	client := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
//	s := redisstore.New(client)
//	if err := s.Ping(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Migrations
//
// Call Migrate once at startup. It is a no-op for schemaless backends.
package store
