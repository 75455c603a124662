// Package clicker wires the timing core into a long-running daemon.
//
// Run loads the settings, builds the session controller, recorder, player and
// input listener around one status bus, serves the Control gRPC API and the
// optional WebSocket status feed, and shuts everything down when its context
// is cancelled.
package clicker
