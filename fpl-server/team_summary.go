package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"fpl-query-mcp/internal/query"
)

// TeamSummaryArgs is the input schema of the team_summary tool.
type TeamSummaryArgs struct {
	Team    string `json:"team" jsonschema:"Team name, short code or numeric id"`
	LastN   int    `json:"last_n,omitempty" jsonschema:"Completed games to include (default 5)"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"Bypass the cache and fetch fresh data"`
}

// buildTeamSummary aggregates a team's most recent finished fixtures into
// wins/draws/losses, goals and points. A team with no completed games gets
// zero counts and dash (null) averages instead of a division error.
func (a *app) buildTeamSummary(ctx context.Context, args TeamSummaryArgs) (string, error) {
	if strings.TrimSpace(args.Team) == "" {
		return "", query.SpecErrorf("team is required")
	}
	lastN := args.LastN
	if lastN <= 0 {
		lastN = 5
	}

	teams, err := a.teamsTable(ctx, args.Refresh)
	if err != nil {
		return "", err
	}
	teamID, ok := resolveTeamID(teams, args.Team)
	if !ok {
		return fmt.Sprintf("team %q not found", args.Team), nil
	}
	teamName := args.Team
	for _, rec := range teams.Records {
		if recInt(rec, "id") == teamID {
			teamName = recString(rec, "name")
			break
		}
	}

	fixtures, err := a.fixturesTable(ctx, args.Refresh)
	if err != nil {
		return "", err
	}
	recent, err := query.Run(fixtures, query.Spec{
		Filters: []query.Filter{
			{Field: "team_id", Op: query.OpEq, Value: teamID},
			{Field: "finished", Op: query.OpEq, Value: true},
		},
		Sort:  &query.Sort{Field: "kickoff_time", Descending: true},
		Limit: &lastN,
	})
	if err != nil {
		return "", err
	}

	var games, wins, draws, losses, scored, conceded, points int
	for _, rec := range recent {
		games++
		goalsFor := recInt(rec, "team_h_score")
		goalsAgainst := recInt(rec, "team_a_score")
		if recInt(rec, "team_a_id") == teamID {
			goalsFor, goalsAgainst = goalsAgainst, goalsFor
		}
		scored += goalsFor
		conceded += goalsAgainst
		switch {
		case goalsFor > goalsAgainst:
			wins++
			points += 3
		case goalsFor == goalsAgainst:
			draws++
			points++
		default:
			losses++
		}
	}

	avgPoints, avgScored, avgConceded := "-", "-", "-"
	if games > 0 {
		avgPoints = fmt.Sprintf("%.2f", float64(points)/float64(games))
		avgScored = fmt.Sprintf("%.2f", float64(scored)/float64(games))
		avgConceded = fmt.Sprintf("%.2f", float64(conceded)/float64(games))
	}

	return fmt.Sprintf(
		"Summary for %s (last %d completed games):\n"+
			"Wins: %d, Draws: %d, Losses: %d\n"+
			"Goals scored: %d, Goals conceded: %d\n"+
			"Points: %d\n"+
			"Averages per game: points %s, scored %s, conceded %s",
		teamName, games, wins, draws, losses, scored, conceded, points,
		avgPoints, avgScored, avgConceded), nil
}

func (a *app) teamSummaryHandler() func(context.Context, *mcp.CallToolRequest, TeamSummaryArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args TeamSummaryArgs) (*mcp.CallToolResult, any, error) {
		out, err := a.buildTeamSummary(ctx, args)
		if err != nil {
			a.metrics.ToolCall("team_summary", "error")
			return toolError(err), nil, nil
		}
		a.metrics.ToolCall("team_summary", "ok")
		return toolText(out), nil, nil
	}
}
