package table

import (
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// positionNames is the static element_type table: the FPL API has carried
// these four codes unchanged since its first season.
var positionNames = map[int]string{
	1: "goalkeeper",
	2: "defender",
	3: "midfielder",
	4: "forward",
}

var positionShort = map[int]string{
	1: "GKP",
	2: "DEF",
	3: "MID",
	4: "FWD",
}

type bootstrapElement struct {
	ID                int    `json:"id"`
	FirstName         string `json:"first_name"`
	SecondName        string `json:"second_name"`
	WebName           string `json:"web_name"`
	Team              int    `json:"team"`
	ElementType       int    `json:"element_type"`
	NowCost           int    `json:"now_cost"`
	TotalPoints       int    `json:"total_points"`
	Minutes           int    `json:"minutes"`
	Starts            int    `json:"starts"`
	GoalsScored       int    `json:"goals_scored"`
	Assists           int    `json:"assists"`
	CleanSheets       int    `json:"clean_sheets"`
	GoalsConceded     int    `json:"goals_conceded"`
	YellowCards       int    `json:"yellow_cards"`
	RedCards          int    `json:"red_cards"`
	Bonus             int    `json:"bonus"`
	SelectedByPercent string `json:"selected_by_percent"`
	Form              string `json:"form"`
	Status            string `json:"status"`
}

type bootstrapTeam struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	ShortName           string `json:"short_name"`
	Strength            int    `json:"strength"`
	StrengthOverallHome int    `json:"strength_overall_home"`
	StrengthOverallAway int    `json:"strength_overall_away"`
	StrengthAttackHome  int    `json:"strength_attack_home"`
	StrengthAttackAway  int    `json:"strength_attack_away"`
	StrengthDefenceHome int    `json:"strength_defence_home"`
	StrengthDefenceAway int    `json:"strength_defence_away"`
}

type bootstrapPayload struct {
	Elements []bootstrapElement `json:"elements"`
	Teams    []bootstrapTeam    `json:"teams"`
}

func decodeBootstrap(raw []byte) (*bootstrapPayload, error) {
	var payload bootstrapPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(err, "parse bootstrap payload")
	}
	return &payload, nil
}

func (p *bootstrapPayload) teamsByID() map[int]bootstrapTeam {
	out := make(map[int]bootstrapTeam, len(p.Teams))
	for _, t := range p.Teams {
		out[t.ID] = t
	}
	return out
}

func (p *bootstrapPayload) elementsByID() map[int]bootstrapElement {
	out := make(map[int]bootstrapElement, len(p.Elements))
	for _, e := range p.Elements {
		out[e.ID] = e
	}
	return out
}

// parseFloat converts the API's stringly-typed percentages and form values;
// an empty or unparsable string becomes a null cell.
func parseFloat(s string) any {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return f
}
