// Package recorder captures pointer presses into a replayable sequence.
package recorder
