package fetch

import "fmt"

// Endpoint identifies one upstream resource. Path is the URL path relative
// to the API base, Key the relative on-disk cache location, Name a low
// cardinality label for metrics.
type Endpoint struct {
	Name string
	Path string
	Key  string
}

// Bootstrap returns players, teams and event metadata in one document.
func Bootstrap() Endpoint {
	return Endpoint{
		Name: "bootstrap",
		Path: "/bootstrap-static/",
		Key:  "bootstrap/bootstrap-static.json",
	}
}

// Fixtures returns every fixture of the season.
func Fixtures() Endpoint {
	return Endpoint{
		Name: "fixtures",
		Path: "/fixtures/",
		Key:  "fixtures/fixtures.json",
	}
}

// ElementSummary returns one player's gameweek history and upcoming fixtures.
func ElementSummary(playerID int) Endpoint {
	return Endpoint{
		Name: "element_summary",
		Path: fmt.Sprintf("/element-summary/%d/", playerID),
		Key:  fmt.Sprintf("element/%d/summary.json", playerID),
	}
}

// EntryPicks returns the squad an FPL entry fielded in one gameweek.
func EntryPicks(entryID, gw int) Endpoint {
	return Endpoint{
		Name: "entry_picks",
		Path: fmt.Sprintf("/entry/%d/event/%d/picks/", entryID, gw),
		Key:  fmt.Sprintf("entry/%d/gw/%d/picks.json", entryID, gw),
	}
}
