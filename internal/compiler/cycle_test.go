package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func derivedDecl(name, base string) Decl {
	return Decl{Name: name, Kind: DeclDerived, Base: base, Func: "same_as"}
}

func TestFindCycles_None(t *testing.T) {
	decls := []Decl{
		freeDecl("Tx"),
		derivedDecl("A", "Tx"),
		derivedDecl("B", "A"),
		derivedDecl("C", "A"),
	}
	assert.Empty(t, FindCycles(decls))
}

func TestFindCycles_Empty(t *testing.T) {
	assert.Empty(t, FindCycles(nil))
}

func TestFindCycles_SelfLoop(t *testing.T) {
	cycles := FindCycles([]Decl{derivedDecl("A", "A")})

	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"A", "A"}, cycles[0].Path)
	assert.Equal(t, "A is derived from itself", cycles[0].Message)
}

func TestFindCycles_ThreeNodes(t *testing.T) {
	decls := []Decl{
		freeDecl("Tx"),
		derivedDecl("A", "C"),
		derivedDecl("B", "A"),
		derivedDecl("C", "B"),
		derivedDecl("D", "A"),
	}
	cycles := FindCycles(decls)

	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"A", "C", "B", "A"}, cycles[0].Path)
	assert.Equal(t, "derivation cycle: A → C → B → A", cycles[0].Message)
}

func TestFindCycles_Separate(t *testing.T) {
	decls := []Decl{
		derivedDecl("A", "B"),
		derivedDecl("B", "A"),
		derivedDecl("X", "Y"),
		derivedDecl("Y", "X"),
	}
	cycles := FindCycles(decls)

	require.Len(t, cycles, 2)
	assert.Equal(t, []string{"A", "B", "A"}, cycles[0].Path)
	assert.Equal(t, []string{"X", "Y", "X"}, cycles[1].Path)
}

func TestFindCycles_UndeclaredBaseIgnored(t *testing.T) {
	assert.Empty(t, FindCycles([]Decl{derivedDecl("A", "Missing")}))
}
