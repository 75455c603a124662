// Package status carries the outbound stream of human-readable events.
//
// Emitters, the recorder and the player publish Events to a Publisher. The
// Bus fans them out to subscribers through bounded buffers and never blocks
// the publisher: a subscriber that falls behind loses events instead.
package status
