package registry

import (
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Sentinel errors for resolution failures. Callers match with errors.Is.
var (
	ErrUnknownModuleType        = fmt.Errorf("unknown module type")
	ErrUnknownParameter         = fmt.Errorf("unknown parameter")
	ErrModuleInstanceOutOfRange = fmt.Errorf("module instance out of range")
	ErrParameterOutOfRange      = fmt.Errorf("parameter value out of range")
	ErrParameterTypeMismatch    = fmt.Errorf("parameter type mismatch")
)

// Kind classifies what a parameter's raw value looks like on the wire.
type Kind int

const (
	// KindFloat is a numeric parameter constrained to [Min, Max].
	KindFloat Kind = iota
	// KindEnum is a string parameter constrained to a fixed value set.
	KindEnum
	// KindString is an unconstrained string parameter.
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindEnum:
		return "enum"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParamSpec describes one parameter of a module schema. The ID is the
// parameter's position in the synthesizer's internal mapping; downstream
// consumers index positionally, so it is part of the external contract.
type ParamSpec struct {
	ID      int
	Name    string
	Kind    Kind
	Min     float64  // KindFloat only
	Max     float64  // KindFloat only
	Enum    []string // KindEnum only
	Default any      // float64 or string, matching Kind
}

// ctyType is the wire type a raw value must convert to for this spec.
func (s *ParamSpec) ctyType() cty.Type {
	if s.Kind == KindFloat {
		return cty.Number
	}
	return cty.String
}

// Check validates a raw value against the spec's kind and domain.
func (s *ParamSpec) Check(value any) error {
	// cty cannot represent NaN (big.Float has no NaN), so it must be
	// rejected before conversion.
	if isNaN(value) {
		if s.Kind == KindFloat {
			return fmt.Errorf("%w: %s=NaN outside [%v, %v]", ErrParameterOutOfRange, s.Name, s.Min, s.Max)
		}
		return fmt.Errorf("%w: %s wants %s, got NaN", ErrParameterTypeMismatch, s.Name, s.Kind)
	}

	val, err := gocty.ToCtyValue(value, s.ctyType())
	if err != nil {
		return fmt.Errorf("%w: %s wants %s, got %T", ErrParameterTypeMismatch, s.Name, s.Kind, value)
	}

	switch s.Kind {
	case KindFloat:
		f, _ := val.AsBigFloat().Float64()
		if f < s.Min || f > s.Max {
			return fmt.Errorf("%w: %s=%v outside [%v, %v]", ErrParameterOutOfRange, s.Name, f, s.Min, s.Max)
		}
	case KindEnum:
		str := val.AsString()
		for _, allowed := range s.Enum {
			if str == allowed {
				return nil
			}
		}
		return fmt.Errorf("%w: %s=%q not in %v", ErrParameterOutOfRange, s.Name, str, s.Enum)
	}
	return nil
}

func isNaN(value any) bool {
	switch v := value.(type) {
	case float64:
		return math.IsNaN(v)
	case float32:
		return math.IsNaN(float64(v))
	}
	return false
}

// Normalize coerces a checked raw value to its canonical Go representation:
// float64 for KindFloat, string otherwise. Check must have passed first.
func (s *ParamSpec) Normalize(value any) any {
	if s.Kind != KindFloat {
		return fmt.Sprintf("%v", value)
	}
	val, err := gocty.ToCtyValue(value, cty.Number)
	if err != nil {
		panic(fmt.Sprintf("registry: Normalize called with unchecked value %v", value))
	}
	f, _ := val.AsBigFloat().Float64()
	return f
}

// ModuleSchema is the immutable parameter table of one module type.
type ModuleSchema struct {
	ModuleType string
	Params     []*ParamSpec // ascending ID order

	byID   map[int]*ParamSpec
	byName map[string]*ParamSpec
}

// ParamByID returns the spec with the given ID, or nil.
func (m *ModuleSchema) ParamByID(id int) *ParamSpec {
	return m.byID[id]
}

// ParamByName returns the spec with the given wire name, or nil.
func (m *ModuleSchema) ParamByName(name string) *ParamSpec {
	return m.byName[name]
}

// composite is a user-facing module slot: an ordered list of constituent
// schemas resolved first-match-wins, plus the valid instance index range.
type composite struct {
	moduleType string
	schemas    []*ModuleSchema
	minIndex   int
	maxIndex   int
}

// Registry holds every module schema and composite slot definition.
type Registry struct {
	schemas    map[string]*ModuleSchema
	composites map[string]*composite
	order      []string // canonical emission order of instance keys
}

// Resolved is the result of a successful parameter lookup. Schema is the
// constituent schema that declared the name, which may differ from the
// composite type the caller asked about (e.g. kParamTablePos asked through
// "Oscillator" resolves to the WTOsc schema).
type Resolved struct {
	Schema *ModuleSchema
	Spec   *ParamSpec
}

// SchemaFor returns the schema registered for a constituent module type.
func (r *Registry) SchemaFor(moduleType string) (*ModuleSchema, error) {
	s, ok := r.schemas[moduleType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModuleType, moduleType)
	}
	return s, nil
}

// ResolveParameter looks up paramName across the ordered constituent schema
// list of the composite moduleType. The first schema declaring the name
// wins; later schemas never override earlier ones.
func (r *Registry) ResolveParameter(moduleType, paramName string) (Resolved, error) {
	comp, ok := r.composites[moduleType]
	if !ok {
		return Resolved{}, fmt.Errorf("%w: %q", ErrUnknownModuleType, moduleType)
	}
	for _, schema := range comp.schemas {
		if spec := schema.ParamByName(paramName); spec != nil {
			return Resolved{Schema: schema, Spec: spec}, nil
		}
	}
	return Resolved{}, fmt.Errorf("%w: %q has no parameter %q", ErrUnknownParameter, moduleType, paramName)
}

// InstanceRange returns the inclusive instance index bounds for a module
// type, composite or constituent.
func (r *Registry) InstanceRange(moduleType string) (min, max int, err error) {
	comp, ok := r.composites[moduleType]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownModuleType, moduleType)
	}
	return comp.minIndex, comp.maxIndex, nil
}

// CheckInstance validates an instance index against the type's range.
func (r *Registry) CheckInstance(moduleType string, index int) error {
	min, max, err := r.InstanceRange(moduleType)
	if err != nil {
		return err
	}
	if index < min || index > max {
		return fmt.Errorf("%w: %s%d (valid: %d-%d)", ErrModuleInstanceOutOfRange, moduleType, index, min, max)
	}
	return nil
}

// InstanceKeys returns every canonical "{Type}{Index}" key in emission
// order. This is the set of module instances a conforming document must
// carry.
func (r *Registry) InstanceKeys() []string {
	var keys []string
	for _, moduleType := range r.order {
		comp := r.composites[moduleType]
		for i := comp.minIndex; i <= comp.maxIndex; i++ {
			keys = append(keys, fmt.Sprintf("%s%d", moduleType, i))
		}
	}
	return keys
}

// ConstituentTypes returns the constituent module types whose instances
// back a document, in emission order.
func (r *Registry) ConstituentTypes() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
