package main

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"fpl-query-mcp/internal/query"
	"fpl-query-mcp/internal/table"
)

// TeamPicksArgs is the input schema of the team_picks tool.
type TeamPicksArgs struct {
	TeamID  int  `json:"team_id" jsonschema:"FPL entry/team id (required)"`
	GW      int  `json:"gw" jsonschema:"Gameweek number, 1-38 (required)"`
	Refresh bool `json:"refresh,omitempty" jsonschema:"Bypass the cache and fetch fresh data"`
}

var pickColumns = []string{
	"position_short", "player", "team_short", "price_m", "total_points", "multiplier", "cv",
}

// buildTeamPicks lists the squad an entry fielded in one gameweek, with
// captain/vice markers.
func (a *app) buildTeamPicks(ctx context.Context, args TeamPicksArgs) (string, error) {
	if args.TeamID <= 0 {
		return "", query.SpecErrorf("team_id is required")
	}
	if args.GW < 1 || args.GW > 38 {
		return "", query.SpecErrorf("gw must be between 1 and 38, got %d", args.GW)
	}

	picks, err := a.picksTable(ctx, args.TeamID, args.GW, args.Refresh)
	if err != nil {
		return "", err
	}
	if len(picks.Records) == 0 {
		return fmt.Sprintf("no picks found for team %d in gameweek %d", args.TeamID, args.GW), nil
	}

	rows := make([]table.Record, 0, len(picks.Records))
	for _, rec := range picks.Records {
		row := table.Record{}
		for k, v := range rec {
			row[k] = v
		}
		switch {
		case recBool(rec, "is_captain"):
			row["cv"] = "C"
		case recBool(rec, "is_vice_captain"):
			row["cv"] = "V"
		default:
			row["cv"] = nil
		}
		rows = append(rows, row)
	}

	header := fmt.Sprintf("Team picks for GW%d (team %d):\n", args.GW, args.TeamID)
	return header + renderRecords(rows, pickColumns), nil
}

func (a *app) teamPicksHandler() func(context.Context, *mcp.CallToolRequest, TeamPicksArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args TeamPicksArgs) (*mcp.CallToolResult, any, error) {
		out, err := a.buildTeamPicks(ctx, args)
		if err != nil {
			a.metrics.ToolCall("team_picks", "error")
			return toolError(err), nil, nil
		}
		a.metrics.ToolCall("team_picks", "ok")
		return toolText(out), nil, nil
	}
}
