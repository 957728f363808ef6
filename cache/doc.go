// Package cache memoizes method invocations.
//
// An Interceptor derives a key for each call with a keygen.Generator, serves
// the stored result on a hit and runs the call on a miss. Results are stored
// as bytes in a Cache: MemoryCache for a single process, RedisCache when
// several processes share results. Failed calls are never stored, and a call
// whose arguments cannot be keyed runs uncached.
//
// A Breaker can guard a RedisCache: after repeated failures the server is
// skipped for a while, so reads become misses and writes fail fast.
package cache
