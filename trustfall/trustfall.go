// Package trustfall is the root facade tying the parse→index→interpret
// pipeline together: Parse a query once against a schema, then Interpret the
// resulting PreparedQuery against as many adapters/argument sets as needed,
// without a caller ever touching ir/indexed/interpreter directly. Grounded
// on cayley's open.go/cayley.go, which likewise expose a thin top-level
// facade over the backend-specific packages underneath.
package trustfall

import (
	"github.com/obi1kenobi/trustfall-go/frontend"
	"github.com/obi1kenobi/trustfall-go/indexed"
	"github.com/obi1kenobi/trustfall-go/interpreter"
	"github.com/obi1kenobi/trustfall-go/ir"
	"github.com/obi1kenobi/trustfall-go/schema"
)

// PreparedQuery is a parsed, flattened, validated query ready to run
// (possibly repeatedly, against different adapters or argument values)
// without re-parsing or re-lowering its GraphQL-family source text.
type PreparedQuery struct {
	indexed *indexed.IndexedQuery
}

// Variables reports the name and required type of every variable the
// prepared query expects bound at Interpret time.
func (q *PreparedQuery) Variables() map[string]ir.Type {
	return q.indexed.Variables
}

// Parse parses query's GraphQL-family source against sch, lowers it into IR,
// and flattens it into a PreparedQuery. Returns the frontend's accumulated
// *frontend.Errors if parsing or lowering found any problem, or the
// *indexed.InvalidIRQueryError if flattening found one (frontend.Parse
// should never hand indexed.Make an IR it considers invalid, but the two
// checks are intentionally independent layers rather than one monolithic
// pass — the same defense in depth cayley's graph/shape validates a Path's
// built Shape independently of whatever produced it).
func Parse(sch schema.Schema, query string) (*PreparedQuery, error) {
	irQuery, ferr := frontend.Parse(sch, query)
	if ferr != nil {
		return nil, ferr
	}
	iq, ierr := indexed.Make(irQuery)
	if ierr != nil {
		return nil, ierr
	}
	return &PreparedQuery{indexed: iq}, nil
}

// Interpret runs q against adapter with the given bound variables, returning
// one map per matching row, keyed by output name.
func Interpret[V any](adapter interpreter.Adapter[V], q *PreparedQuery, args map[string]ir.FieldValue) (interpreter.Seq[map[string]ir.FieldValue], error) {
	return interpreter.Interpret(adapter, q.indexed, args)
}
