// Package models defines the data shared between the token store, the Spotify client, the control router and the
// HTTP boundary.
//
//   - [TokenRecord] : cached OAuth credential set for one chat user
//   - [Playback] : the user's current playback state
//   - [Track] and [Playlist] : search results and library entries
//   - [ControlRequest] and [Envelope] : the control API wire format
package models
