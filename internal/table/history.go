package table

import (
	"sort"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

type rawHistoryRow struct {
	Round         int  `json:"round"`
	OpponentTeam  int  `json:"opponent_team"`
	WasHome       bool `json:"was_home"`
	Minutes       int  `json:"minutes"`
	GoalsScored   int  `json:"goals_scored"`
	Assists       int  `json:"assists"`
	CleanSheets   int  `json:"clean_sheets"`
	GoalsConceded int  `json:"goals_conceded"`
	Saves         int  `json:"saves"`
	Bonus         int  `json:"bonus"`
	YellowCards   int  `json:"yellow_cards"`
	RedCards      int  `json:"red_cards"`
	TotalPoints   int  `json:"total_points"`
	Value         int  `json:"value"`
}

type elementSummary struct {
	History []rawHistoryRow `json:"history"`
}

var historyFields = []Field{
	{Name: "round", Type: Number},
	{Name: "opponent", Type: String},
	{Name: "opponent_short", Type: String},
	{Name: "was_home", Type: Bool},
	{Name: "minutes", Type: Number},
	{Name: "goals_scored", Type: Number},
	{Name: "assists", Type: Number},
	{Name: "clean_sheets", Type: Number},
	{Name: "goals_conceded", Type: Number},
	{Name: "saves", Type: Number},
	{Name: "bonus", Type: Number},
	{Name: "yellow_cards", Type: Number},
	{Name: "red_cards", Type: Number},
	{Name: "total_points", Type: Number},
	{Name: "price_m", Type: Number},
}

// History builds one player's per-gameweek stat table from the
// element-summary payload, ordered by round.
func History(summaryRaw, bootstrapRaw []byte) (*Table, error) {
	var summary elementSummary
	if err := sonic.Unmarshal(summaryRaw, &summary); err != nil {
		return nil, errors.Wrap(err, "parse element summary payload")
	}
	payload, err := decodeBootstrap(bootstrapRaw)
	if err != nil {
		return nil, err
	}
	teams := payload.teamsByID()

	rows := make([]rawHistoryRow, len(summary.History))
	copy(rows, summary.History)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Round < rows[j].Round })

	records := make([]Record, 0, len(rows))
	for _, h := range rows {
		var opponent, opponentShort any
		if t, ok := teams[h.OpponentTeam]; ok {
			opponent, opponentShort = t.Name, t.ShortName
		}
		records = append(records, Record{
			"round":          num(h.Round),
			"opponent":       opponent,
			"opponent_short": opponentShort,
			"was_home":       h.WasHome,
			"minutes":        num(h.Minutes),
			"goals_scored":   num(h.GoalsScored),
			"assists":        num(h.Assists),
			"clean_sheets":   num(h.CleanSheets),
			"goals_conceded": num(h.GoalsConceded),
			"saves":          num(h.Saves),
			"bonus":          num(h.Bonus),
			"yellow_cards":   num(h.YellowCards),
			"red_cards":      num(h.RedCards),
			"total_points":   num(h.TotalPoints),
			"price_m":        float64(h.Value) / 10.0,
		})
	}

	return &Table{Kind: "history", Fields: historyFields, Records: records}, nil
}
