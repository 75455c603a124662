// Package click contains the core domain types of the autoclicker.
//
// It defines coordinates and buttons, emitter and playback configuration,
// recorded events and sequences, and the error taxonomy (configuration,
// sink and listener errors) shared by every service.
package click
