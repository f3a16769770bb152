package models

// EnergyOp selects the comparison applied to the energy filter. The gt/lt
// variants are inclusive (>= and <=); this mirrors the behavior clients
// already depend on.
type EnergyOp string

const (
	EnergyGTE EnergyOp = "gt"
	EnergyLTE EnergyOp = "lt"
	EnergyEQ  EnergyOp = "eq"
)

// LogFilter enumerates every recognized list filter. Zero values mean
// "not filtered". String fields match exactly; Search is a case-insensitive
// substring match that includes the decrypted content and therefore cannot be
// pushed down to the store.
type LogFilter struct {
	Category string
	Type     string
	Weather  string
	Mood     string
	Icon     string

	// EnergyLevel applies only when EnergyOp is one of gt/lt/eq.
	EnergyLevel *int
	EnergyOp    EnergyOp

	Search string
}

// HasEnergy reports whether the energy comparison is fully specified.
func (f LogFilter) HasEnergy() bool {
	if f.EnergyLevel == nil {
		return false
	}
	switch f.EnergyOp {
	case EnergyGTE, EnergyLTE, EnergyEQ:
		return true
	}
	return false
}
