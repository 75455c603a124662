// Package client implements the CLI side of the autoclicker: one-shot
// Control calls against a running daemon, the status feed watcher and the
// local coordinate picker.
package client
