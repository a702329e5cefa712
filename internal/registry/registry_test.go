package registry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	r := New()
	require.NotNil(t, r)

	for _, moduleType := range []string{"Oscillator", "WTOsc", "NoiseOsc", "SubOsc", "VoiceFilter"} {
		s, err := r.SchemaFor(moduleType)
		require.NoError(t, err, moduleType)
		assert.Equal(t, moduleType, s.ModuleType)
		assert.NotEmpty(t, s.Params)
	}
}

func TestSchemaIDsUniqueAndAscending(t *testing.T) {
	r := New()
	for _, moduleType := range r.ConstituentTypes() {
		s, err := r.SchemaFor(moduleType)
		require.NoError(t, err)

		seen := map[int]string{}
		lastID := -1
		for _, p := range s.Params {
			if prev, dup := seen[p.ID]; dup {
				t.Errorf("%s: id %d declared by both %s and %s", moduleType, p.ID, prev, p.Name)
			}
			seen[p.ID] = p.Name
			assert.Greater(t, p.ID, lastID, "%s/%s", moduleType, p.Name)
			lastID = p.ID
		}
	}
}

func TestSchemaFor(t *testing.T) {
	r := New()

	_, err := r.SchemaFor("GranularOsc")
	assert.ErrorIs(t, err, ErrUnknownModuleType)
}

func TestResolveParameter(t *testing.T) {
	r := New()

	t.Run("own schema wins", func(t *testing.T) {
		res, err := r.ResolveParameter("Oscillator", "kParamVolume")
		require.NoError(t, err)
		assert.Equal(t, "Oscillator", res.Schema.ModuleType)
		assert.Equal(t, 1, res.Spec.ID)
	})

	t.Run("falls through to wavetable engine", func(t *testing.T) {
		res, err := r.ResolveParameter("Oscillator", "kParamTablePos")
		require.NoError(t, err)
		assert.Equal(t, "WTOsc", res.Schema.ModuleType)
		assert.Equal(t, 6, res.Spec.ID)
	})

	t.Run("first match wins on name collision", func(t *testing.T) {
		// kParamInitialPhase exists in WTOsc (id 8), NoiseOsc (id 2) and
		// SubOsc (id 2); the merge order picks WTOsc.
		res, err := r.ResolveParameter("Oscillator", "kParamInitialPhase")
		require.NoError(t, err)
		assert.Equal(t, "WTOsc", res.Schema.ModuleType)
		assert.Equal(t, 8, res.Spec.ID)

		// kParamFine exists in Oscillator (id 5) and NoiseOsc (id 1).
		res, err = r.ResolveParameter("Oscillator", "kParamFine")
		require.NoError(t, err)
		assert.Equal(t, "Oscillator", res.Schema.ModuleType)
		assert.Equal(t, 5, res.Spec.ID)
	})

	t.Run("filter cutoff", func(t *testing.T) {
		res, err := r.ResolveParameter("VoiceFilter", "kParamFreq")
		require.NoError(t, err)
		assert.Equal(t, 3, res.Spec.ID)
	})

	t.Run("unknown parameter", func(t *testing.T) {
		_, err := r.ResolveParameter("Oscillator", "kParamDoesNotExist")
		assert.ErrorIs(t, err, ErrUnknownParameter)
	})

	t.Run("unknown module type", func(t *testing.T) {
		_, err := r.ResolveParameter("SampleOsc", "kParamVolume")
		assert.ErrorIs(t, err, ErrUnknownModuleType)
	})
}

func TestInstanceRange(t *testing.T) {
	r := New()

	min, max, err := r.InstanceRange("Oscillator")
	require.NoError(t, err)
	assert.Equal(t, 0, min)
	assert.Equal(t, 4, max)

	min, max, err = r.InstanceRange("VoiceFilter")
	require.NoError(t, err)
	assert.Equal(t, 0, min)
	assert.Equal(t, 1, max)

	min, max, err = r.InstanceRange("NoiseOsc")
	require.NoError(t, err)
	assert.Equal(t, 3, min)
	assert.Equal(t, 3, max)

	assert.NoError(t, r.CheckInstance("Oscillator", 4))
	assert.ErrorIs(t, r.CheckInstance("Oscillator", 9), ErrModuleInstanceOutOfRange)
	assert.ErrorIs(t, r.CheckInstance("WTOsc", 3), ErrModuleInstanceOutOfRange)

	_, _, err = r.InstanceRange("SpectralOsc")
	assert.ErrorIs(t, err, ErrUnknownModuleType)
}

func TestInstanceKeys(t *testing.T) {
	r := New()
	assert.Equal(t, []string{
		"Oscillator0", "Oscillator1", "Oscillator2", "Oscillator3", "Oscillator4",
		"WTOsc0", "WTOsc1", "WTOsc2",
		"NoiseOsc3",
		"SubOsc4",
		"VoiceFilter0", "VoiceFilter1",
	}, r.InstanceKeys())
}

func TestParamSpecCheck(t *testing.T) {
	r := New()

	volume, err := r.ResolveParameter("Oscillator", "kParamVolume")
	require.NoError(t, err)

	t.Run("valid float", func(t *testing.T) {
		assert.NoError(t, volume.Spec.Check(0.5))
		assert.NoError(t, volume.Spec.Check(0))
		assert.NoError(t, volume.Spec.Check(1))
	})

	t.Run("out of range float", func(t *testing.T) {
		assert.ErrorIs(t, volume.Spec.Check(1.5), ErrParameterOutOfRange)
		assert.ErrorIs(t, volume.Spec.Check(-0.1), ErrParameterOutOfRange)
	})

	t.Run("type mismatch", func(t *testing.T) {
		assert.ErrorIs(t, volume.Spec.Check("loud"), ErrParameterTypeMismatch)
	})

	t.Run("NaN is rejected, not panicked on", func(t *testing.T) {
		var err error
		assert.NotPanics(t, func() { err = volume.Spec.Check(math.NaN()) })
		assert.ErrorIs(t, err, ErrParameterOutOfRange)
		assert.ErrorIs(t, volume.Spec.Check(float32(math.NaN())), ErrParameterOutOfRange)
	})

	t.Run("infinities fall out of range", func(t *testing.T) {
		assert.ErrorIs(t, volume.Spec.Check(math.Inf(1)), ErrParameterOutOfRange)
		assert.ErrorIs(t, volume.Spec.Check(math.Inf(-1)), ErrParameterOutOfRange)
	})

	shape, err := r.ResolveParameter("SubOsc", "kParamShape")
	require.NoError(t, err)

	t.Run("enum member", func(t *testing.T) {
		assert.NoError(t, shape.Spec.Check("kSaw"))
	})

	t.Run("enum outsider", func(t *testing.T) {
		assert.ErrorIs(t, shape.Spec.Check("kSupersaw"), ErrParameterOutOfRange)
	})

	t.Run("enum type mismatch", func(t *testing.T) {
		assert.ErrorIs(t, shape.Spec.Check(2.0), ErrParameterTypeMismatch)
	})

	filterType, err := r.ResolveParameter("VoiceFilter", "kParamType")
	require.NoError(t, err)

	t.Run("free string", func(t *testing.T) {
		assert.NoError(t, filterType.Spec.Check("LadderMg"))
		assert.NoError(t, filterType.Spec.Check("H18"))
	})
}

func TestParamSpecNormalize(t *testing.T) {
	r := New()

	volume, err := r.ResolveParameter("Oscillator", "kParamVolume")
	require.NoError(t, err)
	assert.Equal(t, 0.5, volume.Spec.Normalize(0.5))
	assert.Equal(t, 1.0, volume.Spec.Normalize(1))

	shape, err := r.ResolveParameter("SubOsc", "kParamShape")
	require.NoError(t, err)
	assert.Equal(t, "kSaw", shape.Spec.Normalize("kSaw"))
}
