package table

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

type rawFixture struct {
	ID              int     `json:"id"`
	Event           *int    `json:"event"`
	KickoffTime     *string `json:"kickoff_time"`
	TeamH           int     `json:"team_h"`
	TeamA           int     `json:"team_a"`
	TeamHScore      *int    `json:"team_h_score"`
	TeamAScore      *int    `json:"team_a_score"`
	TeamHDifficulty int     `json:"team_h_difficulty"`
	TeamADifficulty int     `json:"team_a_difficulty"`
	Started         bool    `json:"started"`
	Finished        bool    `json:"finished"`
}

var fixtureFields = []Field{
	{Name: "id", Type: Number},
	{Name: "gameweek", Type: Number},
	{Name: "kickoff_time", Type: String},
	{Name: "team_h_id", Type: Number},
	{Name: "team_h_name", Type: String},
	{Name: "team_h_short", Type: String},
	{Name: "team_a_id", Type: Number},
	{Name: "team_a_name", Type: String},
	{Name: "team_a_short", Type: String},
	{Name: "team_h_score", Type: Number},
	{Name: "team_a_score", Type: Number},
	{Name: "team_h_difficulty", Type: Number},
	{Name: "team_a_difficulty", Type: Number},
	{Name: "started", Type: Bool},
	{Name: "finished", Type: Bool},
	{Name: "status", Type: String},
}

// fixtureAliases lets a filter match either side of a fixture without
// widening the record schema beyond scalars.
var fixtureAliases = map[string][]string{
	"team":       {"team_h_name", "team_a_name"},
	"team_short": {"team_h_short", "team_a_short"},
	"team_id":    {"team_h_id", "team_a_id"},
}

// Fixtures flattens the fixtures payload, resolving both team ids against
// the bootstrap team list. Scores and kickoff times of unplayed or
// unscheduled fixtures are null.
func Fixtures(fixturesRaw, bootstrapRaw []byte) (*Table, error) {
	var fixtures []rawFixture
	if err := sonic.Unmarshal(fixturesRaw, &fixtures); err != nil {
		return nil, errors.Wrap(err, "parse fixtures payload")
	}
	payload, err := decodeBootstrap(bootstrapRaw)
	if err != nil {
		return nil, err
	}
	teams := payload.teamsByID()

	name := func(id int) (string, string) {
		if t, ok := teams[id]; ok {
			return t.Name, t.ShortName
		}
		return fmt.Sprintf("Team %d", id), "???"
	}

	records := make([]Record, 0, len(fixtures))
	for _, f := range fixtures {
		homeName, homeShort := name(f.TeamH)
		awayName, awayShort := name(f.TeamA)

		status := "upcoming"
		if f.Finished {
			status = "finished"
		}

		records = append(records, Record{
			"id":                num(f.ID),
			"gameweek":          numPtr(f.Event),
			"kickoff_time":      strPtr(f.KickoffTime),
			"team_h_id":         num(f.TeamH),
			"team_h_name":       homeName,
			"team_h_short":      homeShort,
			"team_a_id":         num(f.TeamA),
			"team_a_name":       awayName,
			"team_a_short":      awayShort,
			"team_h_score":      numPtr(f.TeamHScore),
			"team_a_score":      numPtr(f.TeamAScore),
			"team_h_difficulty": num(f.TeamHDifficulty),
			"team_a_difficulty": num(f.TeamADifficulty),
			"started":           f.Started,
			"finished":          f.Finished,
			"status":            status,
		})
	}

	return &Table{
		Kind:    "fixtures",
		Fields:  fixtureFields,
		Aliases: fixtureAliases,
		Records: records,
	}, nil
}
