package weights

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/cohesion/internal/contracts"
)

const yamlTable = `
weights:
  - side: offense
    role_a: QB
    role_b: WR
    weight: 0.85
  - side: offense
    role_a: OL
    role_b: OL
    weight: 1.0
`

const tomlTable = `
[[weights]]
side = "defense"
role_a = "CB"
role_b = "S"
weight = 0.8

[[weights]]
side = "defense"
role_a = "DL"
role_b = "DL"
weight = 1.0
`

func TestDefaultIsValid(t *testing.T) {
	entries := Default()
	require.NoError(t, Validate(entries))

	off := TableFor(contracts.SideOffense, entries)
	def := TableFor(contracts.SideDefense, entries)
	assert.Len(t, off, 11)
	assert.Len(t, def, 10)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		entries []contracts.RolePairWeight
		wantErr string
	}{
		{"bad side", []contracts.RolePairWeight{{Side: "special", RoleA: "K", RoleB: "P", Weight: 0.5}}, "unknown side"},
		{"missing role", []contracts.RolePairWeight{{Side: contracts.SideOffense, RoleA: "QB", Weight: 0.5}}, "required"},
		{"above one", []contracts.RolePairWeight{{Side: contracts.SideOffense, RoleA: "QB", RoleB: "WR", Weight: 1.5}}, "outside"},
		{"negative", []contracts.RolePairWeight{{Side: contracts.SideOffense, RoleA: "QB", RoleB: "WR", Weight: -0.1}}, "outside"},
		{"reversed duplicate", []contracts.RolePairWeight{
			{Side: contracts.SideOffense, RoleA: "QB", RoleB: "WR", Weight: 0.8},
			{Side: contracts.SideOffense, RoleA: "WR", RoleB: "QB", Weight: 0.7},
		}, "duplicate pair"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.entries)
			require.Error(t, err)
			assert.True(t, contracts.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	// same pair on different sides is allowed
	assert.NoError(t, Validate([]contracts.RolePairWeight{
		{Side: contracts.SideOffense, RoleA: "S", RoleB: "S", Weight: 0.1},
		{Side: contracts.SideDefense, RoleA: "S", RoleB: "S", Weight: 0.9},
	}))
}

func TestExpand(t *testing.T) {
	expanded := Expand([]contracts.RolePairWeight{
		{Side: contracts.SideOffense, RoleA: "QB", RoleB: "WR", Weight: 0.85},
		{Side: contracts.SideOffense, RoleA: "OL", RoleB: "OL", Weight: 1.0},
	})

	assert.Len(t, expanded, 3)
	assert.Contains(t, expanded, contracts.RolePairWeight{Side: contracts.SideOffense, RoleA: "WR", RoleB: "QB", Weight: 0.85})
}

func TestTableLookup(t *testing.T) {
	table := TableFor(contracts.SideOffense, Default())

	w, ok := table.Lookup("WR", "QB")
	require.True(t, ok, "reverse ordering falls back")
	assert.Equal(t, 0.85, w)

	_, ok = table.Lookup("QB", "QB")
	assert.False(t, ok)
}

func TestDecodeYAML(t *testing.T) {
	entries, err := DecodeYAML(strings.NewReader(yamlTable))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, contracts.RolePairWeight{Side: contracts.SideOffense, RoleA: "QB", RoleB: "WR", Weight: 0.85}, entries[0])
}

func TestDecodeYAML_UnknownField(t *testing.T) {
	_, err := DecodeYAML(strings.NewReader("weights:\n  - side: offense\n    role_a: QB\n    role_b: WR\n    wieght: 0.8\n"))
	require.Error(t, err)
}

func TestDecodeYAML_Empty(t *testing.T) {
	_, err := DecodeYAML(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, contracts.IsValidation(err))
}

func TestDecodeTOML(t *testing.T) {
	entries, err := DecodeTOML(strings.NewReader(tomlTable))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, contracts.SideDefense, entries[0].Side)
	assert.Equal(t, 0.8, entries[0].Weight)
}

func TestDecodeTOML_UnknownKey(t *testing.T) {
	_, err := DecodeTOML(strings.NewReader(tomlTable + "\nextra = 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "weights.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlTable), 0o644))
	entries, err := LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	tomlPath := filepath.Join(dir, "weights.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(tomlTable), 0o644))
	entries, err = LoadFile(tomlPath)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	jsonPath := filepath.Join(dir, "weights.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte("{}"), 0o644))
	_, err = LoadFile(jsonPath)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	entries, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, Default(), entries)
}
