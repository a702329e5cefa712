// Package registry is the single source of truth for the synthesizer's
// module layout: which module types exist, which parameters each exposes,
// and how the user-facing composite slots (an "Oscillator" slot is backed
// by the Oscillator schema plus one of the WTOsc/NoiseOsc/SubOsc schemas)
// resolve parameter names.
//
// The registry is built once from literal tables reverse-engineered from
// the preset format and is never mutated afterwards, so a single instance
// can be shared across any number of concurrent preset builds without
// synchronization.
package registry
