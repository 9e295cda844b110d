package graphqlquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleQuery(t *testing.T) {
	doc, err := Parse(`
		query {
			Animal {
				name @output(name: "animal_name")
			}
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "Animal", doc.Root.Name)
	require.Len(t, doc.Root.Selections, 1)

	nameField := doc.Root.Selections[0]
	assert.Equal(t, "name", nameField.Name)
	assert.False(t, nameField.IsEdge())

	d, ok := nameField.Directive("output")
	require.True(t, ok)
	arg, ok := d.Arg("name")
	require.True(t, ok)
	assert.True(t, arg.HasLiteral)
	s, ok := arg.Literal.AsString()
	require.True(t, ok)
	assert.Equal(t, "animal_name", s)
}

func TestParseTagAndVariableShorthand(t *testing.T) {
	doc, err := Parse(`
		query {
			Animal {
				name @tag(name: "parent_name")
				parent {
					name @filter(op: "=", value: ["%parent_name"])
					age @filter(op: ">=", value: ["$min_age"])
				}
			}
		}
	`)
	require.NoError(t, err)
	parent := doc.Root.Selections[1]
	assert.Equal(t, "parent", parent.Name)
	assert.True(t, parent.IsEdge())

	nameField := parent.Selections[0]
	filterDir, ok := nameField.Directive("filter")
	require.True(t, ok)
	valueArg, ok := filterDir.Arg("value")
	require.True(t, ok)
	require.True(t, valueArg.IsList)
	require.Len(t, valueArg.List, 1)
	assert.Equal(t, "parent_name", valueArg.List[0].TagName)

	ageField := parent.Selections[1]
	ageFilter, _ := ageField.Directive("filter")
	ageVal, _ := ageFilter.Arg("value")
	require.Len(t, ageVal.List, 1)
	assert.Equal(t, "min_age", ageVal.List[0].VariableName)
}

func TestParseInlineFragmentCoercion(t *testing.T) {
	doc, err := Parse(`
		query {
			Entity {
				... on Animal {
					name @output(name: "name")
				}
			}
		}
	`)
	require.NoError(t, err)
	require.Len(t, doc.Root.Selections, 1)
	assert.Equal(t, "Animal", doc.Root.Selections[0].CoercedTo)
}

func TestParseRejectsMultipleOperations(t *testing.T) {
	_, err := Parse(`
		query A { Animal { name } }
		query B { Animal { name } }
	`)
	assert.Error(t, err)
}
