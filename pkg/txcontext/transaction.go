package txcontext

import (
	"errors"
	"fmt"

	"cellgate-hq/pricelock/pkg/validation"
)

// Host read failures. They mirror the error codes a chain runtime returns for
// out-of-range or unreadable items.
var (
	ErrIndexOutOfBound   = errors.New("index out of bound")
	ErrUnsupportedSource = errors.New("unsupported source")
	ErrInjected          = errors.New("injected read failure")
)

// Read names a host read, used to inject failures.
type Read string

const (
	ReadArgs     Read = "args"
	ReadWitness  Read = "witness"
	ReadCapacity Read = "capacity"
)

// ParseRead parses a read name.
func ParseRead(s string) (Read, error) {
	switch r := Read(s); r {
	case ReadArgs, ReadWitness, ReadCapacity:
		return r, nil
	}
	return "", fmt.Errorf("unknown host read %q (want args, witness or capacity)", s)
}

// Cell is a transaction cell. Only the committed capacity is modelled.
type Cell struct {
	Capacity uint64
}

// Transaction is an in-memory transaction that implements validation.Host.
// Witness i belongs to output i, matching the layout the lock expects.
type Transaction struct {
	Args      []byte
	Inputs    []Cell
	Outputs   []Cell
	Witnesses []validation.WitnessField

	failures map[Read]error
}

var _ validation.Host = (*Transaction)(nil)

// New builds a single-output transaction carrying rule in witness 0.
func New(args []byte, rule string, capacity uint64) *Transaction {
	return &Transaction{
		Args:      args,
		Outputs:   []Cell{{Capacity: capacity}},
		Witnesses: []validation.WitnessField{{Present: true, Data: []byte(rule)}},
	}
}

// FailOn makes the given read return err. A nil err injects ErrInjected.
func (t *Transaction) FailOn(read Read, err error) *Transaction {
	if err == nil {
		err = ErrInjected
	}
	if t.failures == nil {
		t.failures = make(map[Read]error)
	}
	t.failures[read] = err
	return t
}

// ScriptArgs returns the lock script args.
func (t *Transaction) ScriptArgs() ([]byte, error) {
	if err := t.failures[ReadArgs]; err != nil {
		return nil, err
	}
	return t.Args, nil
}

// WitnessLock returns the lock field of a witness. Witnesses are only
// addressable through SourceOutput and SourceInput.
func (t *Transaction) WitnessLock(index int, source validation.Source) (validation.WitnessField, error) {
	if err := t.failures[ReadWitness]; err != nil {
		return validation.WitnessField{}, err
	}
	if source != validation.SourceOutput && source != validation.SourceInput {
		return validation.WitnessField{}, fmt.Errorf("witness from %s: %w", source, ErrUnsupportedSource)
	}
	if index < 0 || index >= len(t.Witnesses) {
		return validation.WitnessField{}, fmt.Errorf("witness %d: %w", index, ErrIndexOutOfBound)
	}
	return t.Witnesses[index], nil
}

// CellCapacity returns the capacity of an input or output cell.
func (t *Transaction) CellCapacity(index int, source validation.Source) (uint64, error) {
	if err := t.failures[ReadCapacity]; err != nil {
		return 0, err
	}

	var cells []Cell
	switch source {
	case validation.SourceOutput:
		cells = t.Outputs
	case validation.SourceInput:
		cells = t.Inputs
	default:
		return 0, fmt.Errorf("cell from %s: %w", source, ErrUnsupportedSource)
	}
	if index < 0 || index >= len(cells) {
		return 0, fmt.Errorf("%s cell %d: %w", source, index, ErrIndexOutOfBound)
	}
	return cells[index].Capacity, nil
}
