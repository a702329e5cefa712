// Package document turns a fully populated Preset into the canonical JSON
// shape the external packer consumes, after a pre-flight structural check.
//
// Field naming, capitalization and key ordering are part of the external
// contract: parameter values are keyed by the decimal string of their ID
// in ascending order, matrix rows are keyed ModSlot0..ModSlotN with a
// fixed field order, and a template-backed preset is emitted from the
// template's own bytes with only the touched keys rewritten. Emission
// therefore never goes through Go map marshaling, which would reorder
// keys.
package document
