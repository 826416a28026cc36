// Package script runs a list of set operations read from yaml:
//
//	steps:
//	  - add: [3, 4]
//	  - add: [10, 17]
//	  - remove: [13, 28]
//	  - print: true
//
// Interval values are kept untyped until a step runs, so a malformed or
// missing pair surfaces as interval.ErrInvalidInterval like any other bad
// input.
package script

import (
	"fmt"
	"io"

	"github.com/henderiw/intervalset/pkg/interval"
	"github.com/henderiw/intervalset/pkg/intervalset"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Script struct {
	Steps []Step `yaml:"steps"`
}

// Operand is the raw value of an add or remove key. A key that is present
// but null yields an Operand with a nil Value.
type Operand struct {
	Value any
}

// Step holds exactly one operation.
type Step struct {
	Add    *Operand
	Remove *Operand
	Print  bool
}

// UnmarshalYAML decodes a step mapping, keeping track of which keys are
// present independently of their values.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: step must be a mapping", value.Line)
	}
	for n := 0; n+1 < len(value.Content); n += 2 {
		key, val := value.Content[n], value.Content[n+1]

		var op Operand
		switch key.Value {
		case "add", "remove":
			if err := val.Decode(&op.Value); err != nil {
				return fmt.Errorf("line %d: %s: %w", val.Line, key.Value, err)
			}
		case "print":
			if err := val.Decode(&s.Print); err != nil {
				return fmt.Errorf("line %d: print: %w", val.Line, err)
			}
			continue
		default:
			return fmt.Errorf("line %d: unknown field %q", key.Line, key.Value)
		}

		if key.Value == "add" {
			s.Add = &op
		} else {
			s.Remove = &op
		}
	}
	return nil
}

// Op returns the name of the operation s describes.
func (s Step) Op() string {
	switch {
	case s.Add != nil:
		return "add"
	case s.Remove != nil:
		return "remove"
	case s.Print:
		return "print"
	}
	return ""
}

func (s Step) validate() error {
	n := 0
	if s.Add != nil {
		n++
	}
	if s.Remove != nil {
		n++
	}
	if s.Print {
		n++
	}
	if n != 1 {
		return fmt.Errorf("expected exactly one of add, remove, print, got %d", n)
	}
	return nil
}

// Load decodes a script from r.
func Load(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, errors.Wrap(err, "decoding script")
	}
	for n, step := range s.Steps {
		if err := step.validate(); err != nil {
			return nil, errors.Wrapf(err, "step %d", n)
		}
	}
	return &s, nil
}

// Run applies the steps of s to set in order and stops at the first failing
// step. print steps hand the rendering of set to sink.
func (s *Script) Run(set *intervalset.Set, sink func(string)) error {
	for n, step := range s.Steps {
		if err := step.apply(set, sink); err != nil {
			return errors.Wrapf(err, "step %d (%s)", n, step.Op())
		}
	}
	return nil
}

func (s Step) apply(set *intervalset.Set, sink func(string)) error {
	switch {
	case s.Add != nil:
		i, err := s.Add.interval()
		if err != nil {
			return err
		}
		return set.AddInterval(i)
	case s.Remove != nil:
		i, err := s.Remove.interval()
		if err != nil {
			return err
		}
		return set.RemoveInterval(i)
	case s.Print:
		set.Print(sink)
	}
	return nil
}

func (o *Operand) interval() (interval.Interval, error) {
	if o.Value == nil {
		return interval.Interval{}, fmt.Errorf("%w: missing interval", interval.ErrInvalidInterval)
	}
	vals, ok := o.Value.([]any)
	if !ok {
		return interval.Interval{}, fmt.Errorf("%w: expected a sequence of 2 values, got %v", interval.ErrInvalidInterval, o.Value)
	}
	return interval.FromValues(vals)
}
