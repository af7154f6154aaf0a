// Package sessions owns the per-user token lifecycle.
//
// [Manager] is the only component that reads or writes the token store on the request path. It hands out
// [services.Player] values built from an access token that was checked for expiry immediately before, refreshing
// through the OAuth provider when the token is within [models.ExpirySkew] of its deadline.
//
// # Refresh
//
// Refreshes are coalesced per user: concurrent callers that find the same expired record share a single call to
// the provider. The coalesced refresh re-reads the store first, so a caller holding a stale record never replaces
// a token another caller already refreshed.
//
// A failed refresh deletes the record and reports [shared.ErrNotAuthorized]; the user has to authorize again.
package sessions
