package console

import (
	"fmt"
	"strconv"
)

// Func is a Command backed by a function.
type Func struct {
	Usage string
	Fn    func(args []string) error
}

// Execute calls Fn.
func (f Func) Execute(args []string) error { return f.Fn(args) }
// Describe returns Usage.
func (f Func) Describe() string            { return f.Usage }

// Func registers fn under name.
func (r *Registry) Func(name, usage string, fn func(args []string) error) {
	r.Register(name, Func{Usage: usage, Fn: fn})
}

// Value is the set of types a console variable can hold.
type Value interface {
	bool | int | int64 | uint | float64 | string
}

// Variable is a Command that parses its single argument into a value.
// Executed without arguments, the registry prints the value instead.
type Variable[T Value] struct {
	p *T
}

// NewVariable returns a command bound to p.
func NewVariable[T Value](p *T) Variable[T] {
	return Variable[T]{p: p}
}

// Var registers the variable at p under name.
func Var[T Value](r *Registry, name string, p *T) {
	r.Register(name, NewVariable(p))
}

// Describe returns the current value.
func (v Variable[T]) Describe() string { return v.Value() }

// Value formats the current value.
func (v Variable[T]) Value() string {
	return fmt.Sprint(*v.p)
}

// Execute sets the variable from a single argument. No arguments is a no-op.
func (v Variable[T]) Execute(args []string) error {
	switch len(args) {
	case 0:
		return nil
	case 1:
		x, err := parse[T](args[0])
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBadArgs, err)
		}
		*v.p = x
		return nil
	default:
		return ErrBadArgs
	}
}

func parse[T Value](s string) (T, error) {
	var zero T
	var out any
	var err error
	switch any(zero).(type) {
	case bool:
		out, err = strconv.ParseBool(s)
	case int:
		out, err = strconv.Atoi(s)
	case int64:
		out, err = strconv.ParseInt(s, 0, 64)
	case uint:
		var u uint64
		u, err = strconv.ParseUint(s, 0, strconv.IntSize)
		out = uint(u)
	case float64:
		out, err = strconv.ParseFloat(s, 64)
	case string:
		out = s
	default:
		return zero, fmt.Errorf("unsupported variable type %T", zero)
	}
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}
