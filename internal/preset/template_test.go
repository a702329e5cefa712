package preset

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/serumgo/internal/registry"
)

// minimalTemplate builds a conforming baseline document containing every
// registry-expected instance key, plus any extra top-level JSON members.
func minimalTemplate(t *testing.T, reg *registry.Registry, extra ...string) []byte {
	t.Helper()
	parts := []string{`"name": "Init"`}
	for _, key := range reg.InstanceKeys() {
		parts = append(parts, fmt.Sprintf(`%q: {"enabled": false, "params": {}}`, key))
	}
	parts = append(parts, extra...)
	return []byte("{" + strings.Join(parts, ", ") + "}")
}

func TestFromTemplate(t *testing.T) {
	reg := registry.New()

	t.Run("conforming template", func(t *testing.T) {
		p, err := FromTemplate(reg, minimalTemplate(t, reg))
		require.NoError(t, err)
		assert.Equal(t, "Init", p.Name())
		assert.NotNil(t, p.RawTemplate())
		for _, key := range reg.InstanceKeys() {
			assert.True(t, p.HasInstance(key), key)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := FromTemplate(reg, []byte(`{"name":`))
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})

	t.Run("missing module key", func(t *testing.T) {
		raw := minimalTemplate(t, reg)
		broken := strings.Replace(string(raw), `"VoiceFilter1"`, `"VoiceFilter9"`, 1)
		_, err := FromTemplate(reg, []byte(broken))
		require.ErrorIs(t, err, ErrSchemaMismatch)
		assert.Contains(t, err.Error(), "VoiceFilter1")
	})

	t.Run("missing name", func(t *testing.T) {
		raw := strings.Replace(string(minimalTemplate(t, reg)), `"name"`, `"title"`, 1)
		_, err := FromTemplate(reg, []byte(raw))
		require.ErrorIs(t, err, ErrSchemaMismatch)
		assert.Contains(t, err.Error(), "name")
	})
}

func TestTemplateValueFallback(t *testing.T) {
	reg := registry.New()
	raw := minimalTemplate(t, reg)
	raw = []byte(strings.Replace(string(raw),
		`"Oscillator0": {"enabled": false, "params": {}}`,
		`"Oscillator0": {"enabled": true, "params": {"1": 0.8, "2": -0.25}}`, 1))

	p, err := FromTemplate(reg, raw)
	require.NoError(t, err)

	volume, err := p.GetParameter("Oscillator", 0, "kParamVolume")
	require.NoError(t, err)
	pan, err := p.GetParameter("Oscillator", 0, "kParamPan")
	require.NoError(t, err)
	octave, err := p.GetParameter("Oscillator", 0, "kParamOctave")
	require.NoError(t, err)

	// Template values show through reads until overwritten.
	assert.Equal(t, 0.8, p.ReadParameter(volume))
	assert.Equal(t, -0.25, p.ReadParameter(pan))
	assert.Equal(t, 0.0, p.ReadParameter(octave))
	assert.True(t, p.IsEnabled("Oscillator", 0))
	assert.False(t, p.IsEnabled("Oscillator", 1))

	require.NoError(t, p.SetParameter(volume, 0.1))
	assert.Equal(t, 0.1, p.ReadParameter(volume))
}

func TestTemplateModSlotsLoaded(t *testing.T) {
	reg := registry.New()
	raw := minimalTemplate(t, reg,
		`"ModSlot0": {"sourceId": 6, "auxSourceId": 0, "destModuleTypeString": "VoiceFilter", "destModuleID": 0, "destModuleParamName": "kParamFreq", "destModuleParamID": 3, "amount": 50, "bipolar": true}`,
		`"ModSlot1": {"sourceId": 2, "auxSourceId": 0, "destModuleTypeString": "Oscillator", "destModuleID": 0, "destModuleParamName": "kParamVolume", "destModuleParamID": 1, "amount": 30, "bipolar": false}`,
	)

	p, err := FromTemplate(reg, raw)
	require.NoError(t, err)
	require.Len(t, p.Slots(), 2)
	assert.False(t, p.SlotsTouched())

	first := p.Slots()[0]
	assert.Equal(t, 6, first.SourceID)
	assert.Equal(t, "VoiceFilter", first.Dest.ModuleType)
	assert.Equal(t, 3, first.Dest.ParamID)
	assert.Equal(t, 50.0, first.Amount)
	assert.True(t, first.Bipolar)
	assert.Equal(t, 2, p.Slots()[1].SourceID)
}

func TestTemplateSlotCapacity(t *testing.T) {
	reg := registry.New()
	denseRows := func(n int) []string {
		rows := make([]string, n)
		for i := range rows {
			rows[i] = fmt.Sprintf(`"ModSlot%d": {"sourceId": 6, "auxSourceId": 0, "destModuleTypeString": "VoiceFilter", "destModuleID": 0, "destModuleParamName": "kParamFreq", "destModuleParamID": 3, "amount": 10, "bipolar": false}`, i)
		}
		return rows
	}

	t.Run("full matrix loads", func(t *testing.T) {
		p, err := FromTemplate(reg, minimalTemplate(t, reg, denseRows(MaxSlots)...))
		require.NoError(t, err)
		assert.Len(t, p.Slots(), MaxSlots)
	})

	t.Run("overfull matrix rejected", func(t *testing.T) {
		_, err := FromTemplate(reg, minimalTemplate(t, reg, denseRows(MaxSlots+1)...))
		require.ErrorIs(t, err, ErrSchemaMismatch)
		assert.Contains(t, err.Error(), "capacity")
	})
}
