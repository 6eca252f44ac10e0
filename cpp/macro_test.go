package cpp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMacroTableDefineInsertsAndReports(t *testing.T) {
	var mt macroTable

	existed := mt.define("FOO", "42")
	require.False(t, existed)

	value, found := mt.find("FOO")
	require.True(t, found)
	require.Equal(t, "42", value)
}

func TestMacroTableDefineOverwritesAndReportsExisting(t *testing.T) {
	var mt macroTable
	mt.define("FOO", "1")

	existed := mt.define("FOO", "2")
	require.True(t, existed)

	value, _ := mt.find("FOO")
	require.Equal(t, "2", value)
}

func TestMacroTableDefineTrimsWhitespace(t *testing.T) {
	var mt macroTable
	mt.define("  FOO  ", "  42  ")

	value, found := mt.find("FOO")
	require.True(t, found)
	require.Equal(t, "42", value)
}

func TestMacroTableUndefRemovesAndReports(t *testing.T) {
	var mt macroTable
	mt.define("FOO", "42")

	require.True(t, mt.undef("FOO"))
	_, found := mt.find("FOO")
	require.False(t, found)

	require.False(t, mt.undef("FOO"))
}

func TestMacroTableUndefPreservesOtherEntries(t *testing.T) {
	var mt macroTable
	mt.define("A", "1")
	mt.define("B", "2")
	mt.define("C", "3")

	mt.undef("B")

	for name, want := range map[string]string{"A": "1", "C": "3"} {
		v, found := mt.find(name)
		require.True(t, found, name)
		require.Equal(t, want, v)
	}
	_, found := mt.find("B")
	require.False(t, found)
}

func TestMacroTableFindUnknownReportsNotFound(t *testing.T) {
	var mt macroTable
	_, found := mt.find("NOPE")
	require.False(t, found)
}

func TestMacroTableResetDropsEverything(t *testing.T) {
	var mt macroTable
	mt.define("A", "1")
	mt.define("B", "2")

	mt.reset()

	_, found := mt.find("A")
	require.False(t, found)
	require.Empty(t, mt.macros)
}
