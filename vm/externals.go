package vm

import (
	"fmt"
	"io"
	"strconv"

	"github.com/codeassociates/atomc/internal/errs"
)

// ExternalFunc is a host-provided builtin: it consumes its arguments from
// the stack and may push a return value, exactly like an earlier interpreter's
// `external_put_i(stack) -> stack` contract.
type ExternalFunc func(s *Stack) error

// Registry maps external-function names to their host implementation
// ("the registry is the only public extension point").
type Registry struct {
	funcs map[string]ExternalFunc
}

// NewRegistry returns a Registry pre-populated with put_i and put_d,
// writing to out.
func NewRegistry(out io.Writer) *Registry {
	r := &Registry{funcs: make(map[string]ExternalFunc)}
	r.Register("put_i", putI(out))
	r.Register("put_d", putD(out))
	return r
}

// Register adds or replaces the implementation bound to name.
func (r *Registry) Register(name string, fn ExternalFunc) {
	r.funcs[name] = fn
}

// Call invokes the implementation registered under name.
func (r *Registry) Call(name string, s *Stack) error {
	fn, ok := r.funcs[name]
	if !ok {
		return fmt.Errorf("vm: no external function registered as %q", name)
	}
	return fn(s)
}

// putI prints the integer argument as "=> <value>".
func putI(out io.Writer) ExternalFunc {
	return func(s *Stack) error {
		v, err := s.Pop()
		if err != nil {
			return err
		}
		iv, ok := v.(int)
		if !ok {
			return &errs.OutOfBounds{Offset: s.sp()}
		}
		fmt.Fprintf(out, "=> %d\n", iv)
		return nil
	}
}

// putD prints the floating argument as "=> <value>". Bound to
// its own implementation, not aliased to put_i's (Open Question 5
// — the source's put_i/put_d name mixup is not carried over).
func putD(out io.Writer) ExternalFunc {
	return func(s *Stack) error {
		v, err := s.Pop()
		if err != nil {
			return err
		}
		fv, ok := v.(float64)
		if !ok {
			return &errs.OutOfBounds{Offset: s.sp()}
		}
		fmt.Fprintf(out, "=> %s\n", formatDouble(fv))
		return nil
	}
}

// formatDouble renders a double the way a host C runtime's default %g-ish
// formatting would for small test values: the shortest round-tripping
// decimal representation, always with a fractional part (so 1.0 prints as
// "1.0", not "1").
func formatDouble(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	for _, r := range s {
		if r == '.' || r == 'e' || r == 'E' {
			return s
		}
	}
	return s + ".0"
}
