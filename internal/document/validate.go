package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/vk/serumgo/internal/modmatrix"
	"github.com/vk/serumgo/internal/preset"
	"github.com/vk/serumgo/internal/registry"
)

// Violation is one structural problem found during pre-flight validation.
type Violation struct {
	Key    string
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Key, v.Reason)
}

// ValidationError aggregates every violation found in one pass, so the
// caller can fix all of them before retrying.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("preset validation failed: %s", strings.Join(msgs, "; "))
}

// Validate performs the structural completeness check. It returns every
// violation found, not just the first; an empty slice means the preset is
// ready to serialize.
func Validate(p *preset.Preset) []Violation {
	reg := p.Registry()
	var out []Violation

	raw := p.RawTemplate()
	doc := gjson.ParseBytes(raw)

	// Required top-level structure. Fresh presets carry every instance by
	// construction; template-backed ones re-check the template here so the
	// serializer can rely on the keys being present.
	for _, key := range reg.InstanceKeys() {
		if !p.HasInstance(key) {
			out = append(out, Violation{Key: key, Reason: "module instance missing"})
			continue
		}
		if raw != nil && !doc.Get(key).Exists() {
			out = append(out, Violation{Key: key, Reason: "missing from template document"})
		}
	}

	// Every declared parameter value must belong to its instance's schema
	// and satisfy the schema domain. Template-declared values are held to
	// the same standard as explicit writes.
	for _, moduleType := range reg.ConstituentTypes() {
		schema, err := reg.SchemaFor(moduleType)
		if err != nil {
			continue
		}
		min, max, _ := reg.InstanceRange(moduleType)
		for i := min; i <= max; i++ {
			key := fmt.Sprintf("%s%d", moduleType, i)
			if inst := p.Instance(key); inst != nil {
				out = append(out, checkValues(key, schema, inst.Values())...)
			}
			if raw != nil {
				out = append(out, checkTemplateParams(key, schema, doc.Get(key+".params"))...)
			}
		}
	}

	// Every matrix row's destination must still resolve, and its source
	// must be in the fixed table (template rows included).
	for i, slot := range p.Slots() {
		key := fmt.Sprintf("ModSlot%d", i)
		if err := modmatrix.CheckSource(modmatrix.Source{SourceID: slot.SourceID, AuxSourceID: slot.AuxSourceID}); err != nil {
			out = append(out, Violation{Key: key, Reason: err.Error()})
		}
		out = append(out, checkDestination(key, p, slot)...)
	}

	// The matrix sequence has no slot-id field distinct from position, so
	// a gap in the template's ModSlotN keys would silently shift rows.
	if raw != nil {
		out = append(out, checkSlotDensity(doc)...)
	}

	return out
}

func checkValues(key string, schema *registry.ModuleSchema, values map[int]any) []Violation {
	var out []Violation
	for id, v := range values {
		spec := schema.ParamByID(id)
		if spec == nil {
			out = append(out, Violation{Key: key, Reason: fmt.Sprintf("value for unknown parameter id %d", id)})
			continue
		}
		if err := spec.Check(v); err != nil {
			out = append(out, Violation{Key: key, Reason: err.Error()})
		}
	}
	return out
}

func checkTemplateParams(key string, schema *registry.ModuleSchema, params gjson.Result) []Violation {
	if !params.Exists() || !params.IsObject() {
		return nil
	}
	var out []Violation
	params.ForEach(func(k, v gjson.Result) bool {
		id, err := strconv.Atoi(k.String())
		if err != nil {
			out = append(out, Violation{Key: key, Reason: fmt.Sprintf("non-numeric parameter key %q", k.String())})
			return true
		}
		spec := schema.ParamByID(id)
		if spec == nil {
			out = append(out, Violation{Key: key, Reason: fmt.Sprintf("template value for unknown parameter id %d", id)})
			return true
		}
		if err := spec.Check(v.Value()); err != nil {
			out = append(out, Violation{Key: key, Reason: err.Error()})
		}
		return true
	})
	return out
}

func checkDestination(key string, p *preset.Preset, slot preset.ModSlot) []Violation {
	var out []Violation
	dest := slot.Dest
	if !p.HasInstance(dest.InstanceKey()) {
		out = append(out, Violation{Key: key, Reason: fmt.Sprintf("destination %s not bound", dest.InstanceKey())})
		return out
	}
	schema, err := p.Registry().SchemaFor(dest.ModuleType)
	if err != nil {
		out = append(out, Violation{Key: key, Reason: err.Error()})
		return out
	}
	spec := schema.ParamByID(dest.ParamID)
	if spec == nil {
		out = append(out, Violation{Key: key, Reason: fmt.Sprintf("destination %s has no parameter id %d", dest.ModuleType, dest.ParamID)})
		return out
	}
	if spec.Name != dest.ParamName {
		out = append(out, Violation{Key: key, Reason: fmt.Sprintf("destination parameter id %d is %s, not %s", dest.ParamID, spec.Name, dest.ParamName)})
	}
	return out
}

func checkSlotDensity(doc gjson.Result) []Violation {
	present := make(map[int]bool)
	last := -1
	doc.ForEach(func(k, _ gjson.Result) bool {
		if i, ok := matrixKeyIndex(k.String()); ok {
			present[i] = true
			if i > last {
				last = i
			}
		}
		return true
	})

	var out []Violation
	for i := 0; i < last; i++ {
		if !present[i] {
			out = append(out, Violation{
				Key:    fmt.Sprintf("ModSlot%d", i),
				Reason: "gap in matrix sequence",
			})
		}
	}
	for i := preset.MaxSlots; i <= last; i++ {
		if present[i] {
			out = append(out, Violation{
				Key:    fmt.Sprintf("ModSlot%d", i),
				Reason: fmt.Sprintf("row exceeds the %d-slot matrix capacity", preset.MaxSlots),
			})
		}
	}
	return out
}

// matrixKeyIndex extracts N from a top-level "ModSlotN" member. ok is
// false for any other key.
func matrixKeyIndex(key string) (int, bool) {
	const prefix = "ModSlot"
	if !strings.HasPrefix(key, prefix) {
		return 0, false
	}
	i, err := strconv.Atoi(key[len(prefix):])
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
