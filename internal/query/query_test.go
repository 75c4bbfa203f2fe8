package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-query-mcp/internal/table"
)

func intp(n int) *int { return &n }

// squadTable builds a small players-shaped table. Record order is the
// upstream list order, which sorting must preserve for ties.
func squadTable() *table.Table {
	return &table.Table{
		Kind: "players",
		Fields: []table.Field{
			{Name: "id", Type: table.Number},
			{Name: "name", Type: table.String},
			{Name: "position", Type: table.String},
			{Name: "yellow_cards", Type: table.Number},
			{Name: "points_per_match", Type: table.Number},
			{Name: "active", Type: table.Bool},
		},
		Records: []table.Record{
			{"id": 1.0, "name": "Saka", "position": "midfielder", "yellow_cards": 2.0, "points_per_match": 6.5, "active": true},
			{"id": 2.0, "name": "Gabriel", "position": "defender", "yellow_cards": 5.0, "points_per_match": 4.2, "active": true},
			{"id": 3.0, "name": "Dalot", "position": "defender", "yellow_cards": 8.0, "points_per_match": 3.1, "active": true},
			{"id": 4.0, "name": "Colwill", "position": "defender", "yellow_cards": 5.0, "points_per_match": nil, "active": false},
			{"id": 5.0, "name": "Haaland", "position": "forward", "yellow_cards": 2.0, "points_per_match": 8.9, "active": true},
		},
	}
}

func fixtureTable() *table.Table {
	return &table.Table{
		Kind: "fixtures",
		Fields: []table.Field{
			{Name: "id", Type: table.Number},
			{Name: "team_h_name", Type: table.String},
			{Name: "team_a_name", Type: table.String},
			{Name: "finished", Type: table.Bool},
		},
		Aliases: map[string][]string{"team": {"team_h_name", "team_a_name"}},
		Records: []table.Record{
			{"id": 1.0, "team_h_name": "Manchester United", "team_a_name": "Arsenal", "finished": true},
			{"id": 2.0, "team_h_name": "Liverpool", "team_a_name": "Manchester United", "finished": false},
			{"id": 3.0, "team_h_name": "Arsenal", "team_a_name": "Liverpool", "finished": false},
			{"id": 4.0, "team_h_name": "Manchester United", "team_a_name": "Chelsea", "finished": false},
		},
	}
}

func TestRun_LimitMustBePositive(t *testing.T) {
	t.Parallel()

	for _, limit := range []int{0, -1, -20} {
		_, err := Run(squadTable(), Spec{Limit: intp(limit)})
		require.Error(t, err)
		_, ok := AsSpecError(err)
		assert.True(t, ok, "limit %d should yield a SpecError", limit)
	}
}

func TestRun_UnknownFieldFailsFast(t *testing.T) {
	t.Parallel()

	_, err := Run(squadTable(), Spec{
		Filters: []Filter{{Field: "goals", Op: OpGt, Value: 3}},
	})
	require.Error(t, err)
	se, ok := AsSpecError(err)
	require.True(t, ok)
	assert.Contains(t, se.Error(), "goals")
	assert.Contains(t, se.Error(), "available fields")
}

func TestRun_UnknownSortField(t *testing.T) {
	t.Parallel()

	_, err := Run(squadTable(), Spec{Sort: &Sort{Field: "nope"}})
	require.Error(t, err)
	_, ok := AsSpecError(err)
	assert.True(t, ok)
}

func TestRun_UnknownOperator(t *testing.T) {
	t.Parallel()

	_, err := Run(squadTable(), Spec{
		Filters: []Filter{{Field: "name", Op: "like", Value: "Sa"}},
	})
	require.Error(t, err)
	se, ok := AsSpecError(err)
	require.True(t, ok)
	assert.Contains(t, se.Error(), "like")
}

func TestRun_OperatorTypeMismatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		filter Filter
	}{
		{"contains on number", Filter{Field: "yellow_cards", Op: OpContains, Value: "5"}},
		{"lt on bool", Filter{Field: "active", Op: OpLt, Value: true}},
		{"eq string value on number field", Filter{Field: "yellow_cards", Op: OpEq, Value: "five"}},
		{"in with scalar value", Filter{Field: "position", Op: OpIn, Value: "defender"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Run(squadTable(), Spec{Filters: []Filter{tc.filter}})
			require.Error(t, err)
			_, ok := AsSpecError(err)
			assert.True(t, ok)
		})
	}
}

func TestRun_ConjunctiveFilters(t *testing.T) {
	t.Parallel()

	out, err := Run(squadTable(), Spec{
		Filters: []Filter{
			{Field: "position", Op: OpEq, Value: "defender"},
			{Field: "yellow_cards", Op: OpGte, Value: 5},
		},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "Gabriel", out[0]["name"])
	assert.Equal(t, "Dalot", out[1]["name"])
	assert.Equal(t, "Colwill", out[2]["name"])
}

func TestRun_Operators(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"ne", Filter{Field: "position", Op: OpNe, Value: "defender"}, []string{"Saka", "Haaland"}},
		{"lt", Filter{Field: "yellow_cards", Op: OpLt, Value: 5}, []string{"Saka", "Haaland"}},
		{"lte", Filter{Field: "yellow_cards", Op: OpLte, Value: 5}, []string{"Saka", "Gabriel", "Colwill", "Haaland"}},
		{"gt", Filter{Field: "yellow_cards", Op: OpGt, Value: 5}, []string{"Dalot"}},
		{"contains is case-insensitive", Filter{Field: "name", Op: OpContains, Value: "AAL"}, []string{"Haaland"}},
		{"in", Filter{Field: "name", Op: OpIn, Value: []any{"Saka", "Dalot"}}, []string{"Saka", "Dalot"}},
		{"eq bool", Filter{Field: "active", Op: OpEq, Value: false}, []string{"Colwill"}},
		{"lexical gt on strings", Filter{Field: "name", Op: OpGt, Value: "Gabriel"}, []string{"Saka", "Haaland"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Run(squadTable(), Spec{Filters: []Filter{tc.filter}})
			require.NoError(t, err)
			names := make([]string, len(out))
			for i, rec := range out {
				names[i] = rec["name"].(string)
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestRun_NullCellsFailPositiveOperators(t *testing.T) {
	t.Parallel()

	// Colwill's points_per_match is null: eq/lt/gt never match it.
	out, err := Run(squadTable(), Spec{
		Filters: []Filter{{Field: "points_per_match", Op: OpLt, Value: 100}},
	})
	require.NoError(t, err)
	require.Len(t, out, 4)
	for _, rec := range out {
		assert.NotEqual(t, "Colwill", rec["name"])
	}

	// ne treats a null cell as not-equal.
	out, err = Run(squadTable(), Spec{
		Filters: []Filter{{Field: "points_per_match", Op: OpNe, Value: 6.5}},
	})
	require.NoError(t, err)
	assert.Len(t, out, 4)
}

func TestRun_SortIsStable(t *testing.T) {
	t.Parallel()

	// Gabriel and Colwill tie on yellow_cards; upstream order must hold.
	out, err := Run(squadTable(), Spec{
		Sort: &Sort{Field: "yellow_cards", Descending: true},
	})
	require.NoError(t, err)
	names := make([]string, len(out))
	for i, rec := range out {
		names[i] = rec["name"].(string)
	}
	assert.Equal(t, []string{"Dalot", "Gabriel", "Colwill", "Saka", "Haaland"}, names)
}

func TestRun_NullsSortLastBothDirections(t *testing.T) {
	t.Parallel()

	for _, desc := range []bool{false, true} {
		out, err := Run(squadTable(), Spec{
			Sort: &Sort{Field: "points_per_match", Descending: desc},
		})
		require.NoError(t, err)
		require.Len(t, out, 5)
		assert.Equal(t, "Colwill", out[len(out)-1]["name"], "descending=%v", desc)
	}
}

func TestRun_TopDefenderByYellowCards(t *testing.T) {
	t.Parallel()

	out, err := Run(squadTable(), Spec{
		Filters: []Filter{{Field: "position", Op: OpEq, Value: "defender"}},
		Sort:    &Sort{Field: "yellow_cards", Descending: true},
		Limit:   intp(1),
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Dalot", out[0]["name"])
}

func TestRun_AliasMatchesEitherSide(t *testing.T) {
	t.Parallel()

	out, err := Run(fixtureTable(), Spec{
		Filters: []Filter{
			{Field: "team", Op: OpEq, Value: "Manchester United"},
			{Field: "finished", Op: OpEq, Value: false},
		},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 2.0, out[0]["id"])
	assert.Equal(t, 4.0, out[1]["id"])
}

func TestRun_AliasRejectedAsSortField(t *testing.T) {
	t.Parallel()

	_, err := Run(fixtureTable(), Spec{Sort: &Sort{Field: "team"}})
	require.Error(t, err)
	_, ok := AsSpecError(err)
	assert.True(t, ok)
}

func TestRun_LimitTruncatesFromFront(t *testing.T) {
	t.Parallel()

	out, err := Run(squadTable(), Spec{Limit: intp(2)})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Saka", out[0]["name"])
	assert.Equal(t, "Gabriel", out[1]["name"])
}

func TestRun_NoSideEffectsOnTable(t *testing.T) {
	t.Parallel()

	tbl := squadTable()
	_, err := Run(tbl, Spec{Sort: &Sort{Field: "yellow_cards", Descending: true}})
	require.NoError(t, err)
	// the input table keeps its original order
	assert.Equal(t, "Saka", tbl.Records[0]["name"])
	assert.Equal(t, "Haaland", tbl.Records[4]["name"])
}
