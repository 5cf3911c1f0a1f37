// Package player owns the playback session and keeps it in step with an external media widget.
//
// # Widget
//
// A [Widget] is created asynchronously by a [Bootstrap] and reports state changes through the emit
// callback it is given. Commands are fire-and-forget; getters read live widget state.
//
// # Coordinator
//
// [Coordinator] moves through Uninitialized, Initializing and Ready exactly once. Before Ready every
// command is a no-op except [Coordinator.LoadAndPlay], which is kept in a single pending slot (last
// write wins) and replayed on the Ready transition together with the stored volume and shuffle.
//
// Widget events are queued without bound and handled by one goroutine, so a widget may emit from
// inside a command. While the widget reports Playing a poller publishes the current time every
// poll interval. When a track ends the repeat mode at that moment decides whether the track or the
// queue restarts.
//
// Observers receive a coalesced signal on [Coordinator.Changes] and read a [Session] snapshot.
// Track start callbacks run outside the coordinator lock.
package player
