package interpreter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obi1kenobi/trustfall-go/frontend"
	"github.com/obi1kenobi/trustfall-go/indexed"
	"github.com/obi1kenobi/trustfall-go/interpreter"
	"github.com/obi1kenobi/trustfall-go/ir"
)

// TestInterpretFoldPostFilterBound exercises the fold-count early-termination
// bound end to end: only "Hexxa" (2 children) should survive a post_filter
// requiring more than one child.
func TestInterpretFoldPostFilterBound(t *testing.T) {
	irQuery, err := frontend.Parse(animalTestSchema(), `
		query {
			Animal {
				name @output(name: "name")
				children @fold @transform(op: "count") @filter(op: ">", value: ["$min"])
			}
		}
	`)
	require.Nil(t, err)
	iq, ierr := indexed.Make(irQuery)
	require.Nil(t, ierr)

	rows, rerr := interpreter.Interpret[animal](newAnimalAdapter(), iq, map[string]ir.FieldValue{"min": ir.Int64(1)})
	require.NoError(t, rerr)
	names := make(map[string]bool)
	for _, row := range interpreter.Collect(rows) {
		n, _ := row["name"].AsString()
		names[n] = true
	}
	assert.Equal(t, map[string]bool{"Hexxa": true}, names)
}

func TestInterpretFoldExactCountBothSurvivesAndExcludes(t *testing.T) {
	irQuery, err := frontend.Parse(animalTestSchema(), `
		query {
			Animal {
				name @output(name: "name")
				children @fold @transform(op: "count") @filter(op: "=", value: ["$want"])
			}
		}
	`)
	require.Nil(t, err)
	iq, ierr := indexed.Make(irQuery)
	require.Nil(t, ierr)

	rows, rerr := interpreter.Interpret[animal](newAnimalAdapter(), iq, map[string]ir.FieldValue{"want": ir.Int64(2)})
	require.NoError(t, rerr)
	names := make(map[string]bool)
	for _, row := range interpreter.Collect(rows) {
		n, _ := row["name"].AsString()
		names[n] = true
	}
	// Only Hexxa has exactly 2 children; Ancient has 1, Rex/Spot have 0.
	assert.Equal(t, map[string]bool{"Hexxa": true}, names)
}

// TestInterpretFoldCountOverBoundDiscardedNotTruncated exercises the
// early-termination path where an outer context's true child count exceeds
// the post_filter-derived upper bound: that row must be dropped entirely
// rather than have its fold count silently truncated down to the bound,
// which would let it spuriously pass the filter it should have failed.
func TestInterpretFoldCountOverBoundDiscardedNotTruncated(t *testing.T) {
	irQuery, err := frontend.Parse(animalTestSchema(), `
		query {
			Animal {
				name @output(name: "name")
				children @fold @transform(op: "count") @filter(op: "<", value: ["$max"])
			}
		}
	`)
	require.Nil(t, err)
	iq, ierr := indexed.Make(irQuery)
	require.Nil(t, ierr)

	rows, rerr := interpreter.Interpret[animal](newAnimalAdapter(), iq, map[string]ir.FieldValue{"max": ir.Int64(2)})
	require.NoError(t, rerr)
	names := make(map[string]bool)
	for _, row := range interpreter.Collect(rows) {
		n, _ := row["name"].AsString()
		names[n] = true
	}
	// Hexxa has 2 children, which is not < 2; truncating its neighbor list
	// down to the derived bound of 1 would spuriously pass the filter
	// instead of correctly excluding it.
	assert.Equal(t, map[string]bool{"Ancient": true, "Rex": true, "Spot": true}, names)
}
