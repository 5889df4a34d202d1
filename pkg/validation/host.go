package validation

import "fmt"

// Source selects which group of cells or witnesses a host read refers to.
type Source int

const (
	SourceInput Source = iota + 1
	SourceOutput
	SourceCellDep
	SourceGroupInput
	SourceGroupOutput
)

func (s Source) String() string {
	switch s {
	case SourceInput:
		return "input"
	case SourceOutput:
		return "output"
	case SourceCellDep:
		return "cell_dep"
	case SourceGroupInput:
		return "group_input"
	case SourceGroupOutput:
		return "group_output"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// WitnessField is the lock field of a witness. A witness without a lock
// field is a normal outcome and is reported with Present false, not as an
// error.
type WitnessField struct {
	Present bool
	Data    []byte
}

// Host gives the controller read-only access to the transaction being
// validated. Errors returned by Host methods are transport-level read
// failures; absence of optional data is reported in the returned values.
type Host interface {
	// ScriptArgs returns the args of the executing lock script.
	ScriptArgs() ([]byte, error)

	// WitnessLock returns the lock field of the witness at index in source.
	WitnessLock(index int, source Source) (WitnessField, error)

	// CellCapacity returns the committed capacity, in shannons, of the cell
	// at index in source.
	CellCapacity(index int, source Source) (uint64, error)
}
