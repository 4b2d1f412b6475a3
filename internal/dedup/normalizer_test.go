package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		wantDisplay string
		wantKey     string
	}{
		{name: "first last", raw: "Tom Clancy", wantDisplay: "Tom Clancy", wantKey: "tom clancy"},
		{name: "last comma first", raw: "Clancy, Tom", wantDisplay: "Tom Clancy", wantKey: "tom clancy"},
		{name: "upper case swapped", raw: "CLANCY, TOM", wantDisplay: "Tom Clancy", wantKey: "tom clancy"},
		{name: "lower case", raw: "tom clancy", wantDisplay: "Tom Clancy", wantKey: "tom clancy"},
		{name: "extra whitespace", raw: "  tom \t  clancy  ", wantDisplay: "Tom Clancy", wantKey: "tom clancy"},
		{name: "comma without first name", raw: "Smith,", wantDisplay: "Smith", wantKey: "smith"},
		{name: "multi word surname", raw: "le carré, john", wantDisplay: "John Le Carré", wantKey: "john le carré"},
		{name: "apostrophe", raw: "o'brien", wantDisplay: "O'brien", wantKey: "o'brien"},
		{
			name:        "multiple commas pass through",
			raw:         "Tolkien, J. R. R., Sir",
			wantDisplay: "Tolkien, J. R. R., Sir",
			wantKey:     "tolkien, j. r. r., sir",
		},
		{name: "numeric", raw: "1984", wantDisplay: "1984", wantKey: "1984"},
		{name: "symbols", raw: "#$%", wantDisplay: "#$%", wantKey: "#$%"},
		{name: "empty", raw: "", wantDisplay: "", wantKey: ""},
		{name: "blank", raw: "   ", wantDisplay: "", wantKey: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Canonicalize(tt.raw)
			assert.Equal(t, tt.raw, got.Raw)
			assert.Equal(t, tt.wantDisplay, got.DisplayForm)
			assert.Equal(t, tt.wantKey, got.MatchKey)
		})
	}
}

func TestCanonicalize_VariantsShareMatchKey(t *testing.T) {
	t.Parallel()

	variants := []string{"First Last", "Last, First", "LAST, FIRST", "first last"}
	want := Canonicalize(variants[0]).MatchKey
	for _, v := range variants {
		assert.Equal(t, want, Canonicalize(v).MatchKey, v)
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Tom Clancy", "Clancy, Tom", "CLANCY, TOM", "  tom   clancy",
		"Tolkien, J. R. R., Sir", "Smith,", "", "1984", "ÉMILE ZOLA", "de la Cruz, Juana Inés",
	}
	for _, in := range inputs {
		first := Canonicalize(in)
		second := Canonicalize(first.DisplayForm)
		assert.Equal(t, first.MatchKey, second.MatchKey, in)
		assert.Equal(t, first.DisplayForm, second.DisplayForm, in)
	}
}

func TestParseName(t *testing.T) {
	t.Parallel()

	_, err := ParseName(nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	raw := "clancy, tom"
	name, err := ParseName(&raw)
	require.NoError(t, err)
	assert.Equal(t, "Tom Clancy", name.DisplayForm)

	empty := ""
	name, err = ParseName(&empty)
	require.NoError(t, err)
	assert.True(t, name.IsEmpty())
}
