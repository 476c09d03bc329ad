package contracts

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

func TestPositionGroup(t *testing.T) {
	tests := []struct {
		position string
		side     Side
		want     string
	}{
		{"QB", SideOffense, "QB"},
		{"fb", SideOffense, "RB"},
		{"LT", SideOffense, "OL"},
		{"C", SideOffense, "OL"},
		{"EDGE", SideDefense, "DL"},
		{"OLB", SideDefense, "LB"},
		{"DB", SideDefense, "CB"},
		{"FS", SideDefense, "S"},
		{"K", SideOffense, "K"},   // unmapped passes through
		{"QB", SideDefense, "QB"}, // offense position on defense passes through
		{"", SideOffense, ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.side, tt.position), func(t *testing.T) {
			assert.Equal(t, tt.want, PositionGroup(tt.position, tt.side))
		})
	}
}

func TestAnyPositionGroup(t *testing.T) {
	assert.Equal(t, "OL", AnyPositionGroup("rg"))
	assert.Equal(t, "S", AnyPositionGroup("SS"))
	assert.Equal(t, "LS", AnyPositionGroup("LS"))
	assert.Equal(t, "", AnyPositionGroup("  "))
}

func TestParseSide(t *testing.T) {
	side, err := ParseSide("defense")
	require.NoError(t, err)
	assert.Equal(t, SideDefense, side)

	_, err = ParseSide("special")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestRolePriority(t *testing.T) {
	assert.Equal(t, []CoachRole{RoleOffPlayCaller, RoleOC}, RolePriority(SideOffense))
	assert.Equal(t, []CoachRole{RoleDefPlayCaller, RoleDC}, RolePriority(SideDefense))
	assert.Nil(t, RolePriority(Side("x")))
}

func TestCoachWindow_ActiveOn(t *testing.T) {
	w := CoachWindow{StartDate: date("2023-01-01"), EndDate: datePtr("2023-12-31")}

	assert.True(t, w.ActiveOn(date("2023-01-01")), "start is inclusive")
	assert.True(t, w.ActiveOn(date("2023-12-31")), "end is inclusive")
	assert.False(t, w.ActiveOn(date("2022-12-31")))
	assert.False(t, w.ActiveOn(date("2024-01-01")))

	open := CoachWindow{StartDate: date("2020-06-01")}
	assert.True(t, open.ActiveOn(date("2030-01-01")))
}

func TestCoachWindow_Validate(t *testing.T) {
	valid := CoachWindow{CoachID: "c1", CoachName: "Coach", Team: "KC", Role: RoleOC, StartDate: date("2023-01-01")}
	require.NoError(t, valid.Validate())

	badRole := valid
	badRole.Role = "HC"
	assert.True(t, IsValidation(badRole.Validate()))

	inverted := valid
	inverted.EndDate = datePtr("2022-01-01")
	assert.True(t, IsValidation(inverted.Validate()))
}

func TestSystemState_Label(t *testing.T) {
	tests := []struct {
		name  string
		state SystemState
		want  string
	}{
		{
			name:  "closed window",
			state: SystemState{CoachID: "c1", CoachName: "Andy Reid", Role: RoleOffPlayCaller, WindowStart: datePtr("2023-01-01"), WindowEnd: datePtr("2023-12-31")},
			want:  "Andy Reid (OffPlayCaller) — 2023-01-01 to 2023-12-31",
		},
		{
			name:  "open window",
			state: SystemState{CoachID: "c1", CoachName: "Andy Reid", Role: RoleOC, WindowStart: datePtr("2023-01-01")},
			want:  "Andy Reid (OC) — from 2023-01-01",
		},
		{
			name:  "fallbacks",
			state: SystemState{CoachID: "c9"},
			want:  "c9 (Play Caller)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Label())
		})
	}
}

func validLineup() []string {
	ids := make([]string, LineupSize)
	for i := range ids {
		ids[i] = fmt.Sprintf("P%d", i+1)
	}
	return ids
}

func TestLineupRequest_Validate(t *testing.T) {
	base := LineupRequest{Team: "KC", Side: SideOffense, SystemStateID: "s1", Lineup: validLineup()}
	require.NoError(t, base.Validate())

	short := base
	short.Lineup = validLineup()[:10]
	assert.True(t, IsValidation(short.Validate()))

	dup := base
	dup.Lineup = validLineup()
	dup.Lineup[10] = "P1"
	err := dup.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate player P1")

	badSide := base
	badSide.Side = "special"
	assert.True(t, IsValidation(badSide.Validate()))
}

func TestComposite(t *testing.T) {
	expected := 0.35*0.9 + 0.20*1.0 + 0.45*0.8
	assert.InDelta(t, expected, Composite(0.9, 1.0, 0.8), 1e-9)
	assert.InDelta(t, 0.875, Composite(0.9, 1.0, 0.8), 1e-9)
	assert.InDelta(t, 1.0, Composite(1, 1, 1), 1e-9)
	assert.Equal(t, 0.0, Composite(0, 0, 0))
}
