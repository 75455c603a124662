// Package emitter implements one periodic click emitter.
//
// An armed emitter polls the clock at a fixed cadence and fires whenever the
// time since its reference start sits inside a small window after a multiple
// of its interval. Emitters armed with the same reference start stay
// phase-locked regardless of when each of them was armed.
package emitter
