package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindIsScalar(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindString, true},
		{KindBoolean, true},
		{KindInteger, true},
		{KindLong, true},
		{KindFloat, true},
		{KindDouble, true},
		{KindTimestamp, true},
		{KindBlob, true},
		{KindStructure, false},
		{KindList, false},
		{KindMap, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.IsScalar(), "kind %s", tt.kind)
	}
}

func TestGraphResolve(t *testing.T) {
	g := NewGraph([]*Shape{
		{Name: "String", Kind: KindString},
		{Name: "Model", Kind: KindStructure, Members: []Member{
			{Name: "ModelName", Target: "String"},
		}, Required: []string{"ModelName"}},
	})

	s, err := g.Resolve("Model")
	require.NoError(t, err)
	assert.Equal(t, KindStructure, s.Kind)
	assert.True(t, s.IsRequired("ModelName"))
	assert.False(t, s.IsRequired("Other"))
	require.NotNil(t, s.Member("ModelName"))
	assert.Nil(t, s.Member("Other"))

	_, err = g.Resolve("Nope")
	var use *UnknownShapeError
	require.ErrorAs(t, err, &use)
	assert.Equal(t, "Nope", use.Name)
}

func TestGraphRequiredMembers(t *testing.T) {
	g := NewGraph([]*Shape{
		{Name: "String", Kind: KindString},
		{Name: "Model", Kind: KindStructure,
			Members: []Member{
				{Name: "A", Target: "String"},
				{Name: "B", Target: "String"},
				{Name: "C", Target: "String"},
			},
			Required: []string{"C", "A"}},
	})

	req, err := g.RequiredMembers("Model")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, req, "declaration order is preserved")

	_, err = g.RequiredMembers("String")
	assert.ErrorContains(t, err, "not a structure")
}

func TestGraphNamesPreserveOrder(t *testing.T) {
	g := NewGraph([]*Shape{
		{Name: "Zebra", Kind: KindString},
		{Name: "Apple", Kind: KindString},
		{Name: "Mango", Kind: KindString},
	})
	assert.Equal(t, []string{"Zebra", "Apple", "Mango"}, g.Names())
	assert.Equal(t, 3, g.Len())
}

func TestGraphValidate(t *testing.T) {
	g := NewGraph([]*Shape{
		{Name: "String", Kind: KindString},
		{Name: "Integer", Kind: KindInteger},
		{Name: "Model", Kind: KindStructure,
			Members:  []Member{{Name: "Ref", Target: "Missing"}},
			Required: []string{"NoSuchMember"}},
		{Name: "BadList", Kind: KindList, MemberTarget: "AlsoMissing"},
		{Name: "BadKeyMap", Kind: KindMap, KeyTarget: "Integer", ValueTarget: "String"},
		{Name: "BadValueMap", Kind: KindMap, KeyTarget: "String", ValueTarget: "Gone"},
	})

	errs := g.Validate()
	require.Len(t, errs, 5)

	joined := ""
	for _, e := range errs {
		joined += e.Error() + "\n"
	}
	assert.Contains(t, joined, `unknown shape "Missing"`)
	assert.Contains(t, joined, `requires unknown member "NoSuchMember"`)
	assert.Contains(t, joined, `unknown shape "AlsoMissing"`)
	assert.Contains(t, joined, "integer key")
	assert.Contains(t, joined, `unknown shape "Gone"`)
}

func TestGraphValidateClean(t *testing.T) {
	g := NewGraph([]*Shape{
		{Name: "String", Kind: KindString},
		{Name: "Tags", Kind: KindMap, KeyTarget: "String", ValueTarget: "String"},
		{Name: "Names", Kind: KindList, MemberTarget: "String"},
	})
	assert.Empty(t, g.Validate())
}
