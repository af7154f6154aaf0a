// Package ui implements a terminal remote for the relay using bubbletea's Elm architecture.
//
// The remote has two views:
//  1. [NowPlayingView] : current track, progress and liked state, polled every few seconds
//  2. [PlaylistView] : the user's playlists; enter starts one
//
// The [Model] talks to a running relay through its control API (see [Remote]), so it sees exactly what the
// Mini App sees. Actions refresh the status as soon as they complete.
//
// Keys: space play/pause, n next, p prev, l like toggle, r refresh, tab playlists, q quit.
package ui
