// Package repositories implements the [TokenStore] backends for per-user OAuth token records.
//
//   - [MemoryTokenStore] : process lifetime map guarded by a RWMutex; the default
//   - [SQLiteTokenStore] : tokens table in the SQLite database, survives restarts
//   - [RedisTokenStore] : JSON values under a key prefix, shared between processes
//
// Every backend returns copies, so callers can never mutate a stored record in place.
// A missing record is reported with an error wrapping [shared.ErrTokenNotFound].
package repositories
