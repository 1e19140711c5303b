package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadInput is returned when an input value does not decode into the
	// type its control produces.
	ErrBadInput = errors.New("bad input value")
	// ErrUnknownProp is returned for a prop no callback listens to.
	ErrUnknownProp = errors.New("unknown component property")
)

// Prop addresses one property of one layout component.
type Prop struct {
	Component string
	Property  string
}

func (p Prop) String() string {
	return p.Component + "." + p.Property
}

// ParseProp parses the "component.property" form. The property is the part
// after the last dot, component ids may contain dots.
func ParseProp(s string) (Prop, error) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return Prop{}, fmt.Errorf("%w: %q", ErrUnknownProp, s)
	}
	return Prop{Component: s[:i], Property: s[i+1:]}, nil
}

// Inputs holds the raw JSON values of callback inputs.
type Inputs map[Prop]json.RawMessage

// Decode unmarshals the value of p into v.
func (in Inputs) Decode(p Prop, v any) error {
	raw, ok := in[p]
	if !ok {
		return fmt.Errorf("%w: %s missing", ErrBadInput, p)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadInput, p, err)
	}
	return nil
}

// HandlerFunc computes an output value from the current input values.
// Handlers must be pure: same inputs, same output, no side effects.
type HandlerFunc func(in Inputs) (any, error)

// Callback binds one output to the inputs it is recomputed from.
type Callback struct {
	Output  Prop
	Inputs  []Prop
	Handler HandlerFunc
}

// Registry is the table of reactive callbacks, keyed by output.
// It is built once and read concurrently afterwards.
type Registry struct {
	callbacks []Callback
	outputs   map[Prop]int
	byInput   map[Prop][]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		outputs: make(map[Prop]int),
		byInput: make(map[Prop][]int),
	}
}

// Register adds cb. Each output may be produced by one callback only.
func (r *Registry) Register(cb Callback) error {
	if cb.Handler == nil {
		return fmt.Errorf("callback %s: nil handler", cb.Output)
	}
	if len(cb.Inputs) == 0 {
		return fmt.Errorf("callback %s: no inputs", cb.Output)
	}
	if _, dup := r.outputs[cb.Output]; dup {
		return fmt.Errorf("callback %s: output already registered", cb.Output)
	}

	i := len(r.callbacks)
	r.callbacks = append(r.callbacks, cb)
	r.outputs[cb.Output] = i
	for _, in := range cb.Inputs {
		r.byInput[in] = append(r.byInput[in], i)
	}
	return nil
}

// Callbacks returns the registered callbacks in registration order.
func (r *Registry) Callbacks() []Callback {
	out := make([]Callback, len(r.callbacks))
	copy(out, r.callbacks)
	return out
}

// Listens reports whether any callback takes p as input.
func (r *Registry) Listens(p Prop) bool {
	_, ok := r.byInput[p]
	return ok
}

// Dispatch runs every callback depending on at least one changed prop, or
// all callbacks when changed is empty, and returns their outputs.
func (r *Registry) Dispatch(changed []Prop, in Inputs) (map[Prop]any, error) {
	run := make([]bool, len(r.callbacks))
	if len(changed) == 0 {
		for i := range run {
			run[i] = true
		}
	}
	for _, p := range changed {
		idx, ok := r.byInput[p]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProp, p)
		}
		for _, i := range idx {
			run[i] = true
		}
	}

	out := make(map[Prop]any)
	for i, cb := range r.callbacks {
		if !run[i] {
			continue
		}
		v, err := cb.Handler(in)
		if err != nil {
			return nil, fmt.Errorf("callback %s: %w", cb.Output, err)
		}
		out[cb.Output] = v
	}
	return out, nil
}
