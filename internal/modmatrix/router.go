package modmatrix

import (
	"fmt"

	"github.com/vk/serumgo/internal/preset"
	"github.com/vk/serumgo/internal/registry"
)

// ErrDestinationNotBound reports a destination handle whose module
// instance the preset does not carry.
var ErrDestinationNotBound = fmt.Errorf("destination not bound")

// Options bounds what the router accepts. The depth domain is not pinned
// down by the format notes, so it is configuration rather than a constant.
type Options struct {
	AmountMin float64
	AmountMax float64
	MaxSlots  int
}

// DefaultOptions matches the synth's stock matrix: a ±100 percent depth
// range and the full row capacity.
func DefaultOptions() Options {
	return Options{AmountMin: -100, AmountMax: 100, MaxSlots: preset.MaxSlots}
}

// Router validates and appends modulation routes for one Preset.
type Router struct {
	preset *preset.Preset
	opts   Options
}

// NewRouter returns a router over p with the given options.
func NewRouter(p *preset.Preset, opts Options) *Router {
	return &Router{preset: p, opts: opts}
}

// AddModulation validates a route and appends it to the matrix. Duplicate
// routes are permitted; several modulators can stack on one target, and
// the same modulator can be routed to one target twice. Returns the
// created slot; its matrix index is its position in the slot sequence.
func (r *Router) AddModulation(src Source, dest preset.Handle, amount float64, bipolar bool) (preset.ModSlot, error) {
	if err := CheckSource(src); err != nil {
		return preset.ModSlot{}, err
	}
	if !r.preset.HasInstance(dest.InstanceKey()) {
		return preset.ModSlot{}, fmt.Errorf("%w: %s", ErrDestinationNotBound, dest.InstanceKey())
	}
	if amount < r.opts.AmountMin || amount > r.opts.AmountMax {
		return preset.ModSlot{}, fmt.Errorf("%w: amount %v outside [%v, %v]",
			registry.ErrParameterOutOfRange, amount, r.opts.AmountMin, r.opts.AmountMax)
	}
	if len(r.preset.Slots()) >= r.opts.MaxSlots {
		return preset.ModSlot{}, fmt.Errorf("%w (%d slots)", preset.ErrMatrixFull, r.opts.MaxSlots)
	}

	slot := preset.ModSlot{
		SourceID:    src.SourceID,
		AuxSourceID: src.AuxSourceID,
		Dest:        dest,
		Amount:      amount,
		Bipolar:     bipolar,
	}
	if _, err := r.preset.AppendSlot(slot); err != nil {
		return preset.ModSlot{}, err
	}
	return slot, nil
}

// RemoveModulation deletes the route at the given matrix index. Later
// routes shift down one position so ModSlotN indices stay dense.
func (r *Router) RemoveModulation(index int) error {
	return r.preset.RemoveSlot(index)
}
