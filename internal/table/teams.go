package table

var teamFields = []Field{
	{Name: "id", Type: Number},
	{Name: "name", Type: String},
	{Name: "short_name", Type: String},
	{Name: "strength", Type: Number},
	{Name: "strength_overall_home", Type: Number},
	{Name: "strength_overall_away", Type: Number},
	{Name: "strength_attack_home", Type: Number},
	{Name: "strength_attack_away", Type: Number},
	{Name: "strength_defence_home", Type: Number},
	{Name: "strength_defence_away", Type: Number},
}

// Teams flattens the bootstrap team list, retaining the strength ratings.
func Teams(bootstrapRaw []byte) (*Table, error) {
	payload, err := decodeBootstrap(bootstrapRaw)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(payload.Teams))
	for _, t := range payload.Teams {
		records = append(records, Record{
			"id":                    num(t.ID),
			"name":                  t.Name,
			"short_name":            t.ShortName,
			"strength":              num(t.Strength),
			"strength_overall_home": num(t.StrengthOverallHome),
			"strength_overall_away": num(t.StrengthOverallAway),
			"strength_attack_home":  num(t.StrengthAttackHome),
			"strength_attack_away":  num(t.StrengthAttackAway),
			"strength_defence_home": num(t.StrengthDefenceHome),
			"strength_defence_away": num(t.StrengthDefenceAway),
		})
	}

	return &Table{Kind: "teams", Fields: teamFields, Records: records}, nil
}
