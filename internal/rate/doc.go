// Package rate implements Redis-backed fixed-window counters.
//
// # Window semantics
//
// INCR + conditional EXPIRE on first hit. Keys are "<prefix>:<subject>".
// A subject that stops hitting is forgotten when its window expires.
package rate
