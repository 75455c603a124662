// Package player replays recorded sequences with their original spacing.
//
// A run clicks every event of the sequence, waits the recorded gap between
// consecutive events, and repeats the whole pass the configured number of
// times with a pause in between. Runs are cancellable at every wait.
package player
