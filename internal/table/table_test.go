package table

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := sonic.Marshal(v)
	require.NoError(t, err)
	return b
}

func testBootstrap(t *testing.T) []byte {
	t.Helper()
	return marshal(t, map[string]any{
		"elements": []any{
			map[string]any{
				"id": 1, "first_name": "Bukayo", "second_name": "Saka", "web_name": "Saka",
				"team": 1, "element_type": 3, "now_cost": 100, "total_points": 150,
				"minutes": 2700, "starts": 30, "goals_scored": 10, "assists": 12,
				"yellow_cards": 2, "selected_by_percent": "45.3", "form": "6.5", "status": "a",
			},
			map[string]any{
				"id": 2, "first_name": "Fresh", "second_name": "Signing", "web_name": "Signing",
				"team": 2, "element_type": 2, "now_cost": 45, "total_points": 0,
				"minutes": 0, "starts": 0, "selected_by_percent": "", "status": "a",
			},
			map[string]any{
				// unknown team and element_type resolve to nulls
				"id": 3, "first_name": "Mystery", "second_name": "Man", "web_name": "Mystery",
				"team": 99, "element_type": 9, "now_cost": 50, "total_points": 12,
				"starts": 4, "selected_by_percent": "1.0", "status": "a",
			},
		},
		"teams": []any{
			map[string]any{"id": 1, "name": "Arsenal", "short_name": "ARS", "strength": 5,
				"strength_attack_home": 1350, "strength_defence_away": 1320},
			map[string]any{"id": 2, "name": "Manchester United", "short_name": "MUN", "strength": 4},
		},
	})
}

func TestPlayers_JoinsAndDerivedFields(t *testing.T) {
	t.Parallel()

	tbl, err := Players(testBootstrap(t))
	require.NoError(t, err)
	require.Len(t, tbl.Records, 3)
	assert.Equal(t, "players", tbl.Kind)

	saka := tbl.Records[0]
	assert.Equal(t, "Arsenal", saka["team_name"])
	assert.Equal(t, "ARS", saka["team_short"])
	assert.Equal(t, "midfielder", saka["position"])
	assert.Equal(t, 10.0, saka["price_m"])
	assert.Equal(t, 5.0, saka["points_per_match"])
	assert.Equal(t, 45.3, saka["selected_by_percent"])
}

func TestPlayers_ZeroStartsYieldNullAverage(t *testing.T) {
	t.Parallel()

	tbl, err := Players(testBootstrap(t))
	require.NoError(t, err)

	rookie := tbl.Records[1]
	assert.Nil(t, rookie["points_per_match"])
	assert.Nil(t, rookie["selected_by_percent"])
	assert.Nil(t, rookie["form"])
}

func TestPlayers_UniformSchema(t *testing.T) {
	t.Parallel()

	tbl, err := Players(testBootstrap(t))
	require.NoError(t, err)

	// every record carries every declared field, null or not
	for i, rec := range tbl.Records {
		for _, f := range tbl.Fields {
			_, present := rec[f.Name]
			assert.True(t, present, "record %d missing field %s", i, f.Name)
		}
		assert.Len(t, rec, len(tbl.Fields), "record %d has extra fields", i)
	}

	// unresolvable foreign keys become nulls, not omissions
	mystery := tbl.Records[2]
	assert.Nil(t, mystery["team_name"])
	assert.Nil(t, mystery["position"])
}

func TestPlayers_MalformedPayload(t *testing.T) {
	t.Parallel()

	_, err := Players([]byte(`{"elements": "nope"`))
	assert.Error(t, err)
}

func TestTeams_RetainsStrengthRatings(t *testing.T) {
	t.Parallel()

	tbl, err := Teams(testBootstrap(t))
	require.NoError(t, err)
	require.Len(t, tbl.Records, 2)

	arsenal := tbl.Records[0]
	assert.Equal(t, "Arsenal", arsenal["name"])
	assert.Equal(t, 5.0, arsenal["strength"])
	assert.Equal(t, 1350.0, arsenal["strength_attack_home"])
	assert.Equal(t, 1320.0, arsenal["strength_defence_away"])
}

func TestFixtures_ResolvesTeamsAndStatus(t *testing.T) {
	t.Parallel()

	fixturesRaw := marshal(t, []any{
		map[string]any{
			"id": 10, "event": 1, "kickoff_time": "2025-08-16T14:00:00Z",
			"team_h": 2, "team_a": 1, "team_h_score": 2, "team_a_score": 1,
			"started": true, "finished": true,
		},
		map[string]any{
			// unscheduled: no event, no kickoff, no scores
			"id": 11, "team_h": 1, "team_a": 2, "started": false, "finished": false,
		},
	})

	tbl, err := Fixtures(fixturesRaw, testBootstrap(t))
	require.NoError(t, err)
	require.Len(t, tbl.Records, 2)

	played := tbl.Records[0]
	assert.Equal(t, "Manchester United", played["team_h_name"])
	assert.Equal(t, "ARS", played["team_a_short"])
	assert.Equal(t, 2.0, played["team_h_score"])
	assert.Equal(t, "finished", played["status"])

	tbd := tbl.Records[1]
	assert.Nil(t, tbd["gameweek"])
	assert.Nil(t, tbd["kickoff_time"])
	assert.Nil(t, tbd["team_h_score"])
	assert.Nil(t, tbd["team_a_score"])
	assert.Equal(t, "upcoming", tbd["status"])

	// filter-only aliases cover both sides of a fixture
	fields, ok := tbl.Alias("team")
	require.True(t, ok)
	assert.Equal(t, []string{"team_h_name", "team_a_name"}, fields)
}

func TestHistory_OrderedByRound(t *testing.T) {
	t.Parallel()

	summaryRaw := marshal(t, map[string]any{
		"history": []any{
			map[string]any{"round": 3, "opponent_team": 2, "was_home": true, "minutes": 90, "total_points": 9, "value": 101},
			map[string]any{"round": 1, "opponent_team": 1, "was_home": false, "minutes": 60, "total_points": 2, "value": 100},
			map[string]any{"round": 2, "opponent_team": 2, "was_home": false, "minutes": 90, "total_points": 6, "value": 100},
		},
	})

	tbl, err := History(summaryRaw, testBootstrap(t))
	require.NoError(t, err)
	require.Len(t, tbl.Records, 3)

	assert.Equal(t, 1.0, tbl.Records[0]["round"])
	assert.Equal(t, 2.0, tbl.Records[1]["round"])
	assert.Equal(t, 3.0, tbl.Records[2]["round"])
	assert.Equal(t, "Arsenal", tbl.Records[0]["opponent"])
	assert.Equal(t, "MUN", tbl.Records[1]["opponent_short"])
	assert.Equal(t, 10.1, tbl.Records[2]["price_m"])
}

func TestPicks_JoinsAndOrdersBySquadPosition(t *testing.T) {
	t.Parallel()

	picksRaw := marshal(t, map[string]any{
		"picks": []any{
			map[string]any{"element": 1, "position": 7, "multiplier": 2, "is_captain": true},
			map[string]any{"element": 2, "position": 4, "multiplier": 1, "is_vice_captain": true},
			map[string]any{"element": 999, "position": 15, "multiplier": 1},
		},
	})

	tbl, err := Picks(picksRaw, testBootstrap(t))
	require.NoError(t, err)
	// unknown element 999 is skipped
	require.Len(t, tbl.Records, 2)

	// defender (element_type 2) sorts ahead of midfielder
	assert.Equal(t, "Signing", tbl.Records[0]["player"])
	assert.Equal(t, "DEF", tbl.Records[0]["position_short"])
	assert.Equal(t, true, tbl.Records[0]["is_vice_captain"])

	captain := tbl.Records[1]
	assert.Equal(t, "Saka", captain["player"])
	assert.Equal(t, true, captain["is_captain"])
	assert.Equal(t, 2.0, captain["multiplier"])
}
