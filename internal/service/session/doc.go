// Package session owns the emitter slots and their shared reference start.
//
// The reference start is set when the first slot is armed and cleared when
// the last slot is disarmed. Every emitter receives it through Arm, which
// keeps emitters with different intervals firing on a common origin.
package session
