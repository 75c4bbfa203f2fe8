package table

// playerFields is the declared schema of the players table.
var playerFields = []Field{
	{Name: "id", Type: Number},
	{Name: "first_name", Type: String},
	{Name: "second_name", Type: String},
	{Name: "web_name", Type: String},
	{Name: "position", Type: String},
	{Name: "team_id", Type: Number},
	{Name: "team_name", Type: String},
	{Name: "team_short", Type: String},
	{Name: "price_m", Type: Number},
	{Name: "total_points", Type: Number},
	{Name: "minutes", Type: Number},
	{Name: "starts", Type: Number},
	{Name: "points_per_match", Type: Number},
	{Name: "goals_scored", Type: Number},
	{Name: "assists", Type: Number},
	{Name: "clean_sheets", Type: Number},
	{Name: "goals_conceded", Type: Number},
	{Name: "yellow_cards", Type: Number},
	{Name: "red_cards", Type: Number},
	{Name: "bonus", Type: Number},
	{Name: "selected_by_percent", Type: Number},
	{Name: "form", Type: Number},
	{Name: "status", Type: String},
}

// Players flattens the bootstrap element list, joining each player's team id
// against the bootstrap teams and the element type against the static
// position table.
func Players(bootstrapRaw []byte) (*Table, error) {
	payload, err := decodeBootstrap(bootstrapRaw)
	if err != nil {
		return nil, err
	}
	teams := payload.teamsByID()

	records := make([]Record, 0, len(payload.Elements))
	for _, e := range payload.Elements {
		var teamName, teamShort any
		if t, ok := teams[e.Team]; ok {
			teamName, teamShort = t.Name, t.ShortName
		}
		var position any
		if name, ok := positionNames[e.ElementType]; ok {
			position = name
		}

		// Derived average; a player with no starts gets a null rather
		// than a division result.
		var pointsPerMatch any
		if e.Starts > 0 {
			pointsPerMatch = float64(e.TotalPoints) / float64(e.Starts)
		}

		records = append(records, Record{
			"id":                  num(e.ID),
			"first_name":          e.FirstName,
			"second_name":         e.SecondName,
			"web_name":            e.WebName,
			"position":            position,
			"team_id":             num(e.Team),
			"team_name":           teamName,
			"team_short":          teamShort,
			"price_m":             float64(e.NowCost) / 10.0,
			"total_points":        num(e.TotalPoints),
			"minutes":             num(e.Minutes),
			"starts":              num(e.Starts),
			"points_per_match":    pointsPerMatch,
			"goals_scored":        num(e.GoalsScored),
			"assists":             num(e.Assists),
			"clean_sheets":        num(e.CleanSheets),
			"goals_conceded":      num(e.GoalsConceded),
			"yellow_cards":        num(e.YellowCards),
			"red_cards":           num(e.RedCards),
			"bonus":               num(e.Bonus),
			"selected_by_percent": parseFloat(e.SelectedByPercent),
			"form":                parseFloat(e.Form),
			"status":              e.Status,
		})
	}

	return &Table{Kind: "players", Fields: playerFields, Records: records}, nil
}
