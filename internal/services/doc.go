// Package services holds the outbound HTTP clients of the relay.
//
// # Spotify
//
// [SpotifyOAuth] wraps an [oauth2.Config] for the authorization code flow: [SpotifyOAuth.AuthURL] carries the user
// identifier as state, [SpotifyOAuth.Exchange] trades the callback code and [SpotifyOAuth.Refresh] renews an expired
// access token through an [oauth2.TokenSource].
//
// [SpotifyClient] implements [Player] for one access token. It never refreshes on its own; the sessions package
// hands out clients built from tokens that were checked for expiry immediately before.
//
// # Telegram
//
// [TelegramClient] wraps a go-telegram [bot.Bot]: it posts messages, optionally with an inline keyboard, registers
// the webhook and looks up the bot's username. Updates use the library's models and arrive on the relay's webhook.
//
// # Control API
//
// [APIService] talks to a running relay and is shared by the `remote` command and the terminal UI.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrTokenExpired] : Spotify rejected the access token (401)
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrTrackNotFound] : search returned no tracks
//   - [shared.ErrRefreshFailed] : the accounts service refused a refresh
package services
