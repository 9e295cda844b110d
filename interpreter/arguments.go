package interpreter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/obi1kenobi/trustfall-go/indexed"
	"github.com/obi1kenobi/trustfall-go/ir"
)

// QueryArgumentsError is the sealed family of problems Interpret can find
// while validating a query's bound arguments against its declared variables,
// before any adapter call is ever made.
type QueryArgumentsError interface {
	error
	isQueryArgumentsError()
}

// MissingArguments reports variables the query requires that the caller did
// not supply.
type MissingArguments struct {
	Names []string
}

func (e MissingArguments) Error() string {
	return fmt.Sprintf("missing required query arguments: %s", strings.Join(e.Names, ", "))
}
func (MissingArguments) isQueryArgumentsError() {}

// UnusedArguments reports caller-supplied names the query never references.
type UnusedArguments struct {
	Names []string
}

func (e UnusedArguments) Error() string {
	return fmt.Sprintf("query arguments supplied but never used: %s", strings.Join(e.Names, ", "))
}
func (UnusedArguments) isQueryArgumentsError() {}

// ArgumentTypeError reports that a supplied argument's value does not
// conform to the type the query requires for it.
type ArgumentTypeError struct {
	Name     string
	Expected ir.Type
	Got      ir.FieldValue
}

func (e ArgumentTypeError) Error() string {
	return fmt.Sprintf("argument %q: expected a value of type %s, got %s", e.Name, e.Expected, e.Got)
}
func (ArgumentTypeError) isQueryArgumentsError() {}

// ValidateArguments checks args against q's declared variables, collecting
// every problem found rather than stopping at the first (mirroring how the
// frontend's Errors accumulates). A single problem is returned as is; two or
// more are combined with errors.Join, so errors.As reaches each of them.
// Returns nil if args satisfies every variable with no leftovers.
func ValidateArguments(q *indexed.IndexedQuery, args map[string]ir.FieldValue) error {
	var errs []error
	var missing []string
	for name, t := range q.Variables {
		v, ok := args[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		if !t.IsValidValue(v) {
			errs = append(errs, ArgumentTypeError{Name: name, Expected: t, Got: v})
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		errs = append(errs, MissingArguments{Names: missing})
	}

	var unused []string
	for name := range args {
		if _, ok := q.Variables[name]; !ok {
			unused = append(unused, name)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		errs = append(errs, UnusedArguments{Names: unused})
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}
