// Package preset holds the mutable in-memory aggregate for one preset
// build: the module instances, their explicitly written parameter values,
// and the ordered modulation slots.
//
// A Preset created from a template keeps the template's raw document and
// only overlays the caller's explicit changes on top of it; keys the
// caller never touches survive serialization byte-for-byte. Each Preset is
// owned exclusively by its builder and is sealed (read-only) once it has
// been serialized.
package preset
