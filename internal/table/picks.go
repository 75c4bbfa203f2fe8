package table

import (
	"sort"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

type rawPick struct {
	Element       int  `json:"element"`
	Position      int  `json:"position"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
}

type picksPayload struct {
	Picks []rawPick `json:"picks"`
}

var pickFields = []Field{
	{Name: "slot", Type: Number},
	{Name: "player", Type: String},
	{Name: "position", Type: String},
	{Name: "position_short", Type: String},
	{Name: "team_name", Type: String},
	{Name: "team_short", Type: String},
	{Name: "price_m", Type: Number},
	{Name: "total_points", Type: Number},
	{Name: "multiplier", Type: Number},
	{Name: "is_captain", Type: Bool},
	{Name: "is_vice_captain", Type: Bool},
}

// Picks joins an entry's gameweek picks against the bootstrap players.
// Rows come out grouped GKP/DEF/MID/FWD, captain first within a group,
// matching how the site presents a squad. Picks whose element id is absent
// from the bootstrap are skipped.
func Picks(picksRaw, bootstrapRaw []byte) (*Table, error) {
	var payload picksPayload
	if err := sonic.Unmarshal(picksRaw, &payload); err != nil {
		return nil, errors.Wrap(err, "parse picks payload")
	}
	bootstrap, err := decodeBootstrap(bootstrapRaw)
	if err != nil {
		return nil, err
	}
	elements := bootstrap.elementsByID()
	teams := bootstrap.teamsByID()

	type joined struct {
		pick    rawPick
		element bootstrapElement
	}
	rows := make([]joined, 0, len(payload.Picks))
	for _, p := range payload.Picks {
		e, ok := elements[p.Element]
		if !ok {
			continue
		}
		rows = append(rows, joined{pick: p, element: e})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].element.ElementType != rows[j].element.ElementType {
			return rows[i].element.ElementType < rows[j].element.ElementType
		}
		return rows[i].pick.Multiplier > rows[j].pick.Multiplier
	})

	records := make([]Record, 0, len(rows))
	for _, r := range rows {
		var teamName, teamShort any
		if t, ok := teams[r.element.Team]; ok {
			teamName, teamShort = t.Name, t.ShortName
		}
		name := r.element.WebName
		if name == "" {
			name = r.element.FirstName + " " + r.element.SecondName
		}
		var position, short any
		if p, ok := positionNames[r.element.ElementType]; ok {
			position, short = p, positionShort[r.element.ElementType]
		}
		records = append(records, Record{
			"slot":            num(r.pick.Position),
			"player":          name,
			"position":        position,
			"position_short":  short,
			"team_name":       teamName,
			"team_short":      teamShort,
			"price_m":         float64(r.element.NowCost) / 10.0,
			"total_points":    num(r.element.TotalPoints),
			"multiplier":      num(r.pick.Multiplier),
			"is_captain":      r.pick.IsCaptain,
			"is_vice_captain": r.pick.IsViceCaptain,
		})
	}

	return &Table{Kind: "picks", Fields: pickFields, Records: records}, nil
}
