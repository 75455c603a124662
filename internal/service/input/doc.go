// Package input listens for global pointer presses and hotkeys.
//
// The Listener turns hook events into click.Press notifications for its
// subscribers (the recorder, coordinate capture) and runs callbacks bound to
// hotkeys. When global listening is impossible it reports one warning and
// the rest of the program keeps working without it.
package input
