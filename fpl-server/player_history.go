package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"fpl-query-mcp/internal/query"
)

// PlayerHistoryArgs is the input schema of the player_history tool.
type PlayerHistoryArgs struct {
	Player  string `json:"player" jsonschema:"Player name (full or partial) or numeric element id"`
	LastN   int    `json:"last_n,omitempty" jsonschema:"Most recent gameweeks to include (default all)"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"Bypass the cache and fetch fresh data"`
}

var historyColumns = []string{
	"round", "opponent_short", "was_home", "minutes", "goals_scored",
	"assists", "goals_conceded", "yellow_cards", "red_cards", "total_points",
}

// buildPlayerHistory renders one player's gameweek-by-gameweek stats,
// ordered by round.
func (a *app) buildPlayerHistory(ctx context.Context, args PlayerHistoryArgs) (string, error) {
	if strings.TrimSpace(args.Player) == "" {
		return "", query.SpecErrorf("player is required")
	}

	players, err := a.playersTable(ctx, args.Refresh)
	if err != nil {
		return "", err
	}
	playerID, ok := resolvePlayerID(players, args.Player)
	if !ok {
		return fmt.Sprintf("player %q not found", args.Player), nil
	}
	playerName := args.Player
	for _, rec := range players.Records {
		if recInt(rec, "id") == playerID {
			playerName = recString(rec, "web_name")
			break
		}
	}

	history, err := a.historyTable(ctx, playerID, args.Refresh)
	if err != nil {
		return "", err
	}
	records := history.Records
	if len(records) == 0 {
		return fmt.Sprintf("no gameweek history available for %s (id %d)", playerName, playerID), nil
	}
	if args.LastN > 0 && len(records) > args.LastN {
		records = records[len(records)-args.LastN:]
	}

	header := fmt.Sprintf("Gameweek history for %s (id %d):\n", playerName, playerID)
	return header + renderRecords(records, historyColumns), nil
}

func (a *app) playerHistoryHandler() func(context.Context, *mcp.CallToolRequest, PlayerHistoryArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args PlayerHistoryArgs) (*mcp.CallToolResult, any, error) {
		out, err := a.buildPlayerHistory(ctx, args)
		if err != nil {
			a.metrics.ToolCall("player_history", "error")
			return toolError(err), nil, nil
		}
		a.metrics.ToolCall("player_history", "ok")
		return toolText(out), nil, nil
	}
}
