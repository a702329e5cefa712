// Package modmatrix builds and validates modulation-matrix entries. It
// owns the fixed automation source table (mod wheel, envelopes, LFOs,
// macros) and the Router, which checks a route's source code, destination
// binding and depth before appending it to a Preset's slot sequence.
//
// The matrix is append-only and order-preserving: a slot's position in the
// sequence is its externally visible ModSlotN index.
package modmatrix
