package main

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"fpl-query-mcp/internal/query"
	"fpl-query-mcp/internal/table"
)

// QueryFilterArg is one filter condition of the query tool.
type QueryFilterArg struct {
	Field    string `json:"field" jsonschema:"Column to filter on"`
	Operator string `json:"operator" jsonschema:"One of eq|ne|lt|lte|gt|gte|contains|in"`
	Value    any    `json:"value" jsonschema:"Operand; a list for the in operator"`
}

// QuerySortArg orders the results.
type QuerySortArg struct {
	Field     string `json:"field" jsonschema:"Column to sort by"`
	Direction string `json:"direction,omitempty" jsonschema:"asc (default) or desc"`
}

// QueryArgs is the input schema of the query tool.
type QueryArgs struct {
	Entity  string           `json:"entity" jsonschema:"Dataset to query: players, fixtures or teams"`
	Filters []QueryFilterArg `json:"filters,omitempty" jsonschema:"Conjunctive filter conditions"`
	Sort    *QuerySortArg    `json:"sort,omitempty" jsonschema:"Optional sort"`
	Limit   *int             `json:"limit,omitempty" jsonschema:"Maximum rows to return (positive; default all)"`
	Refresh bool             `json:"refresh,omitempty" jsonschema:"Bypass the cache and fetch fresh data"`
}

var displayColumns = map[string][]string{
	"players": {
		"id", "web_name", "position", "team_short", "price_m", "total_points",
		"minutes", "points_per_match", "goals_scored", "assists",
		"yellow_cards", "red_cards", "selected_by_percent",
	},
	"fixtures": {
		"id", "gameweek", "kickoff_time", "team_h_name", "team_a_name",
		"team_h_score", "team_a_score", "status",
	},
	"teams": {
		"id", "name", "short_name", "strength",
		"strength_attack_home", "strength_attack_away",
		"strength_defence_home", "strength_defence_away",
	},
}

// buildQuery validates the request shape, loads the entity's table and runs
// the generic engine over it.
func (a *app) buildQuery(ctx context.Context, args QueryArgs) (string, error) {
	entity := strings.ToLower(strings.TrimSpace(args.Entity))
	cols, known := displayColumns[entity]
	if !known {
		return "", query.SpecErrorf("unknown entity %q: expected players, fixtures or teams", args.Entity)
	}

	spec := query.Spec{Limit: args.Limit}
	for _, f := range args.Filters {
		spec.Filters = append(spec.Filters, query.Filter{
			Field: f.Field,
			Op:    query.Op(strings.ToLower(strings.TrimSpace(f.Operator))),
			Value: f.Value,
		})
	}
	if args.Sort != nil {
		dir := strings.ToLower(strings.TrimSpace(args.Sort.Direction))
		switch dir {
		case "", "asc", "desc":
		default:
			return "", query.SpecErrorf("sort direction must be asc or desc, got %q", args.Sort.Direction)
		}
		spec.Sort = &query.Sort{Field: args.Sort.Field, Descending: dir == "desc"}
	} else {
		spec.Sort = defaultSort(entity)
	}

	var (
		tbl *table.Table
		err error
	)
	switch entity {
	case "players":
		tbl, err = a.playersTable(ctx, args.Refresh)
	case "fixtures":
		tbl, err = a.fixturesTable(ctx, args.Refresh)
	default:
		tbl, err = a.teamsTable(ctx, args.Refresh)
	}
	if err != nil {
		return "", err
	}

	records, err := query.Run(tbl, spec)
	if err != nil {
		return "", err
	}
	return renderRecords(records, cols), nil
}

// defaultSort mirrors how the site presents each dataset when the caller
// does not ask for an order.
func defaultSort(entity string) *query.Sort {
	switch entity {
	case "players":
		return &query.Sort{Field: "total_points", Descending: true}
	case "fixtures":
		return &query.Sort{Field: "kickoff_time"}
	default:
		return nil
	}
}

func (a *app) queryHandler() func(context.Context, *mcp.CallToolRequest, QueryArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args QueryArgs) (*mcp.CallToolResult, any, error) {
		out, err := a.buildQuery(ctx, args)
		if err != nil {
			a.metrics.ToolCall("query", "error")
			return toolError(err), nil, nil
		}
		a.metrics.ToolCall("query", "ok")
		return toolText(out), nil, nil
	}
}
