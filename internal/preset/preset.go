package preset

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/vk/serumgo/internal/registry"
)

var (
	// ErrSchemaMismatch reports a template missing a module or key the
	// registry expects. Fatal to the build; the caller must supply a
	// conforming template.
	ErrSchemaMismatch = fmt.Errorf("template does not match schema")

	// ErrSealed reports a mutation attempted after serialization.
	ErrSealed = fmt.Errorf("preset is sealed after serialization")

	// ErrMatrixFull reports a slot append past the matrix capacity.
	ErrMatrixFull = fmt.Errorf("modulation matrix is full")
)

// MaxSlots is the synth's matrix capacity. No document may carry more
// ModSlot rows than this, whatever the router is configured with.
const MaxSlots = 64

// ModuleInstance is one concrete occurrence of a module type within a
// preset. Values holds only explicitly written parameters, keyed by
// parameter ID; unwritten parameters fall back to the template value or
// the schema default.
type ModuleInstance struct {
	ModuleType string
	Index      int

	values  map[int]any
	enabled *bool // nil until explicitly toggled
}

// Key returns the instance's document key, e.g. "VoiceFilter1".
func (m *ModuleInstance) Key() string {
	return fmt.Sprintf("%s%d", m.ModuleType, m.Index)
}

// Values returns the explicitly written parameter values keyed by ID.
// The returned map is the live store; callers outside this package must
// treat it as read-only.
func (m *ModuleInstance) Values() map[int]any {
	return m.values
}

// Enabled reports the explicit enable toggle, if any.
func (m *ModuleInstance) Enabled() (on, set bool) {
	if m.enabled == nil {
		return false, false
	}
	return *m.enabled, true
}

// Preset is the aggregate root for one preset build. It owns its module
// instances and modulation slots exclusively; nothing is shared between
// Preset values.
type Preset struct {
	reg *registry.Registry

	name        string
	author      string
	description string

	modules map[string]*ModuleInstance
	touched map[string]bool

	slots        []ModSlot
	slotsTouched bool

	rawTemplate []byte
	sealed      bool
}

// New produces a fresh preset with every module instance present at
// schema defaults and disabled.
func New(reg *registry.Registry) *Preset {
	p := &Preset{
		reg:     reg,
		modules: make(map[string]*ModuleInstance),
		touched: make(map[string]bool),
	}
	for _, moduleType := range reg.ConstituentTypes() {
		min, max, _ := reg.InstanceRange(moduleType)
		for i := min; i <= max; i++ {
			inst := &ModuleInstance{ModuleType: moduleType, Index: i, values: make(map[int]any)}
			p.modules[inst.Key()] = inst
		}
	}
	return p
}

// FromTemplate produces a preset backed by the given baseline document.
// The template is kept verbatim; only the caller's explicit changes are
// overlaid on top of it at serialization time. The template must carry a
// name and every module instance the registry expects, otherwise the load
// fails with ErrSchemaMismatch.
func FromTemplate(reg *registry.Registry, raw []byte) (*Preset, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: template is not valid JSON", ErrSchemaMismatch)
	}
	doc := gjson.ParseBytes(raw)

	var missing []string
	if !doc.Get("name").Exists() {
		missing = append(missing, "name")
	}
	for _, key := range reg.InstanceKeys() {
		if !doc.Get(key).Exists() {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: template missing keys: %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}

	p := New(reg)
	p.rawTemplate = append([]byte(nil), raw...)
	p.name = doc.Get("name").String()
	p.author = doc.Get("presetAuthor").String()
	p.description = doc.Get("presetDescription").String()

	// Pull any existing matrix rows into the slot sequence so additions
	// append after them. ModSlot keys must be dense from zero.
	for i := 0; ; i++ {
		row := doc.Get(fmt.Sprintf("ModSlot%d", i))
		if !row.Exists() {
			break
		}
		p.slots = append(p.slots, ModSlot{
			SourceID:    int(row.Get("sourceId").Int()),
			AuxSourceID: int(row.Get("auxSourceId").Int()),
			Dest: Handle{
				ModuleType: row.Get("destModuleTypeString").String(),
				Index:      int(row.Get("destModuleID").Int()),
				ParamName:  row.Get("destModuleParamName").String(),
				ParamID:    int(row.Get("destModuleParamID").Int()),
			},
			Amount:  row.Get("amount").Float(),
			Bipolar: row.Get("bipolar").Bool(),
		})
	}
	if len(p.slots) > MaxSlots {
		return nil, fmt.Errorf("%w: template carries %d matrix rows, capacity is %d", ErrSchemaMismatch, len(p.slots), MaxSlots)
	}

	return p, nil
}

// Registry returns the schema registry this preset resolves against.
func (p *Preset) Registry() *registry.Registry { return p.reg }

// RawTemplate returns the baseline document, or nil for a fresh preset.
func (p *Preset) RawTemplate() []byte { return p.rawTemplate }

// Name returns the preset name.
func (p *Preset) Name() string { return p.name }

// SetName sets the preset name.
func (p *Preset) SetName(name string) error {
	if p.sealed {
		return ErrSealed
	}
	p.name = name
	return nil
}

// Author returns the preset author.
func (p *Preset) Author() string { return p.author }

// SetAuthor sets the preset author.
func (p *Preset) SetAuthor(author string) error {
	if p.sealed {
		return ErrSealed
	}
	p.author = author
	return nil
}

// Description returns the preset description.
func (p *Preset) Description() string { return p.description }

// SetDescription sets the preset description.
func (p *Preset) SetDescription(desc string) error {
	if p.sealed {
		return ErrSealed
	}
	p.description = desc
	return nil
}

// HasInstance reports whether the document carries the instance key.
func (p *Preset) HasInstance(key string) bool {
	_, ok := p.modules[key]
	return ok
}

// Instance returns the module instance with the given key, or nil.
func (p *Preset) Instance(key string) *ModuleInstance {
	return p.modules[key]
}

// TouchedInstances returns the keys of instances with explicit changes.
func (p *Preset) TouchedInstances() []string {
	var keys []string
	for _, key := range p.reg.InstanceKeys() {
		if p.touched[key] {
			keys = append(keys, key)
		}
	}
	return keys
}

// Slots returns the modulation slots in insertion order.
func (p *Preset) Slots() []ModSlot { return p.slots }

// SlotsTouched reports whether the matrix differs from the template.
func (p *Preset) SlotsTouched() bool { return p.slotsTouched }

// AppendSlot appends a validated slot and returns its matrix index. It is
// the storage half of automation routing; use modmatrix.Router, which
// performs source/destination/amount validation before appending.
func (p *Preset) AppendSlot(s ModSlot) (int, error) {
	if p.sealed {
		return 0, ErrSealed
	}
	if len(p.slots) >= MaxSlots {
		return 0, fmt.Errorf("%w (%d slots)", ErrMatrixFull, MaxSlots)
	}
	p.slots = append(p.slots, s)
	p.slotsTouched = true
	return len(p.slots) - 1, nil
}

// RemoveSlot deletes the slot at index and renumbers the rest so the
// ModSlotN sequence stays dense.
func (p *Preset) RemoveSlot(index int) error {
	if p.sealed {
		return ErrSealed
	}
	if index < 0 || index >= len(p.slots) {
		return fmt.Errorf("mod slot %d does not exist (have %d)", index, len(p.slots))
	}
	p.slots = append(p.slots[:index], p.slots[index+1:]...)
	p.slotsTouched = true
	return nil
}

// Seal marks the preset read-only. The serializer calls this after a
// successful emission; every mutation afterwards fails with ErrSealed.
func (p *Preset) Seal() { p.sealed = true }

// Sealed reports whether the preset has been serialized.
func (p *Preset) Sealed() bool { return p.sealed }
