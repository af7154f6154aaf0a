// Package server exposes the relay over HTTP.
//
// # Routes
//
//   - POST /<bot token> : Telegram webhook, see [WebhookHandler]
//   - GET /callback : OAuth redirect target, see [CallbackHandler]
//   - POST /api/control/{action} and the /api/<action> aliases : control API, see [ControlHandler]
//   - GET /healthz and GET /metrics
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] registers [http.ServeMux]
// patterns, so method matching and path wildcards come from the standard mux.
//
// [Middleware] wraps handlers in reverse order (last added executes first). [New] installs request IDs, panic
// recovery, request logging, Prometheus metrics and a per-client rate limit on /api/.
//
// # Control API Errors
//
// Dispatch errors are classified by statusFor: missing user, invalid action and invalid input are 400, an unknown
// or revoked user is 401, and upstream failures are 500 with a fixed message. The webhook secret never appears in
// logs or metric labels.
package server
