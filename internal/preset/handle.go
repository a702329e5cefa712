package preset

import "fmt"

// Handle is a resolved, immutable reference to one parameter of one module
// instance. It carries no live pointer into the Preset; it is a plain
// value, safe to store and reuse across calls, and is re-validated against
// the document every time it is used.
//
// Obtain handles through Preset.GetParameter. A hand-built Handle naming a
// module instance the document does not carry will be rejected at use
// time.
type Handle struct {
	ModuleType string
	Index      int
	ParamID    int
	ParamName  string
}

// InstanceKey returns the document key of the instance the handle names,
// e.g. "Oscillator0".
func (h Handle) InstanceKey() string {
	return fmt.Sprintf("%s%d", h.ModuleType, h.Index)
}

func (h Handle) String() string {
	return fmt.Sprintf("%s.%s", h.InstanceKey(), h.ParamName)
}

// ModSlot is one row of the modulation matrix: an automation source routed
// to a destination parameter with a depth and polarity. Slots are
// immutable once appended; their position in the Preset's slot sequence is
// their externally visible index (ModSlot0, ModSlot1, ...).
type ModSlot struct {
	SourceID    int
	AuxSourceID int
	Dest        Handle
	Amount      float64
	Bipolar     bool
}
