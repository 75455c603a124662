// Package sink performs synthetic clicks and answers live pointer queries.
//
// Robot drives the real pointer through robotgo; Memory records invocations
// for tests and never fails. Both are safe for concurrent use by several
// emitters and the player.
package sink
