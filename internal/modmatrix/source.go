package modmatrix

import "fmt"

// ErrUnknownAutomationSource reports a source code outside the fixed
// enumerated table, or an aux channel the source does not have.
var ErrUnknownAutomationSource = fmt.Errorf("unknown automation source")

// Source identifies one automation source. SourceID ranges over the fixed
// table below; AuxSourceID disambiguates sources with sub-channels and is
// zero everywhere else.
type Source struct {
	SourceID    int
	AuxSourceID int
}

// sourceDef describes one row of the fixed source table.
type sourceDef struct {
	name   string
	maxAux int // highest valid aux channel; 0 means no sub-channels
}

// The source table from the reverse-engineered format notes: Mod Wheel=1,
// Env1-4=2..5, LFO1-10=6..15. The eight macros share code 16 and are told
// apart by aux channel. Codes outside this table are rejected even when
// numerically plausible.
var sourceTable = map[int]sourceDef{
	1:  {name: "ModWheel"},
	2:  {name: "Env1"},
	3:  {name: "Env2"},
	4:  {name: "Env3"},
	5:  {name: "Env4"},
	6:  {name: "LFO1"},
	7:  {name: "LFO2"},
	8:  {name: "LFO3"},
	9:  {name: "LFO4"},
	10: {name: "LFO5"},
	11: {name: "LFO6"},
	12: {name: "LFO7"},
	13: {name: "LFO8"},
	14: {name: "LFO9"},
	15: {name: "LFO10"},
	16: {name: "Macro", maxAux: 7},
}

// CheckSource validates a source against the table.
func CheckSource(s Source) error {
	def, ok := sourceTable[s.SourceID]
	if !ok {
		return fmt.Errorf("%w: sourceId %d", ErrUnknownAutomationSource, s.SourceID)
	}
	if s.AuxSourceID < 0 || s.AuxSourceID > def.maxAux {
		return fmt.Errorf("%w: %s has no aux channel %d", ErrUnknownAutomationSource, def.name, s.AuxSourceID)
	}
	return nil
}

// SourceByName resolves a friendly source name ("LFO1", "Env3",
// "ModWheel", "Macro4") to its Source codes.
func SourceByName(name string) (Source, error) {
	for id, def := range sourceTable {
		if def.maxAux == 0 {
			if def.name == name {
				return Source{SourceID: id}, nil
			}
			continue
		}
		for aux := 0; aux <= def.maxAux; aux++ {
			if fmt.Sprintf("%s%d", def.name, aux+1) == name {
				return Source{SourceID: id, AuxSourceID: aux}, nil
			}
		}
	}
	return Source{}, fmt.Errorf("%w: %q", ErrUnknownAutomationSource, name)
}

// SourceName renders the friendly name for a valid source, or "" if the
// source is not in the table.
func SourceName(s Source) string {
	def, ok := sourceTable[s.SourceID]
	if !ok {
		return ""
	}
	if def.maxAux == 0 {
		return def.name
	}
	return fmt.Sprintf("%s%d", def.name, s.AuxSourceID+1)
}
