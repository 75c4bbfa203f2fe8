package main

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"fpl-query-mcp/internal/fetch"
	"fpl-query-mcp/internal/metrics"
	"fpl-query-mcp/internal/store"
	"fpl-query-mcp/internal/table"
)

// app wires the tool handlers to the cache store and normalizer.
type app struct {
	store   *store.Store
	log     *zap.Logger
	metrics *metrics.Metrics
}

func (a *app) bootstrapRaw(ctx context.Context, refresh bool) ([]byte, error) {
	return a.store.GetOrFetch(ctx, fetch.Bootstrap(), refresh)
}

func (a *app) playersTable(ctx context.Context, refresh bool) (*table.Table, error) {
	raw, err := a.bootstrapRaw(ctx, refresh)
	if err != nil {
		return nil, err
	}
	return table.Players(raw)
}

func (a *app) teamsTable(ctx context.Context, refresh bool) (*table.Table, error) {
	raw, err := a.bootstrapRaw(ctx, refresh)
	if err != nil {
		return nil, err
	}
	return table.Teams(raw)
}

func (a *app) fixturesTable(ctx context.Context, refresh bool) (*table.Table, error) {
	bootstrap, err := a.bootstrapRaw(ctx, refresh)
	if err != nil {
		return nil, err
	}
	fixtures, err := a.store.GetOrFetch(ctx, fetch.Fixtures(), refresh)
	if err != nil {
		return nil, err
	}
	return table.Fixtures(fixtures, bootstrap)
}

func (a *app) historyTable(ctx context.Context, playerID int, refresh bool) (*table.Table, error) {
	bootstrap, err := a.bootstrapRaw(ctx, refresh)
	if err != nil {
		return nil, err
	}
	summary, err := a.store.GetOrFetch(ctx, fetch.ElementSummary(playerID), refresh)
	if err != nil {
		return nil, err
	}
	return table.History(summary, bootstrap)
}

func (a *app) picksTable(ctx context.Context, entryID, gw int, refresh bool) (*table.Table, error) {
	bootstrap, err := a.bootstrapRaw(ctx, refresh)
	if err != nil {
		return nil, err
	}
	picks, err := a.store.GetOrFetch(ctx, fetch.EntryPicks(entryID, gw), refresh)
	if err != nil {
		return nil, err
	}
	return table.Picks(picks, bootstrap)
}

// resolveTeamID accepts a numeric id, an exact (case-insensitive) team name
// or short code, or a partial name, in that order of preference.
func resolveTeamID(teams *table.Table, query string) (int, bool) {
	query = strings.TrimSpace(query)
	if id, err := strconv.Atoi(query); err == nil {
		for _, rec := range teams.Records {
			if recInt(rec, "id") == id {
				return id, true
			}
		}
		return 0, false
	}
	needle := strings.ToLower(query)
	for _, rec := range teams.Records {
		if strings.ToLower(recString(rec, "name")) == needle ||
			strings.ToLower(recString(rec, "short_name")) == needle {
			return recInt(rec, "id"), true
		}
	}
	for _, rec := range teams.Records {
		if strings.Contains(strings.ToLower(recString(rec, "name")), needle) {
			return recInt(rec, "id"), true
		}
	}
	return 0, false
}

// resolvePlayerID accepts a numeric element id, an exact full or web name,
// or a partial match on any name component.
func resolvePlayerID(players *table.Table, query string) (int, bool) {
	query = strings.TrimSpace(query)
	if id, err := strconv.Atoi(query); err == nil {
		for _, rec := range players.Records {
			if recInt(rec, "id") == id {
				return id, true
			}
		}
		return 0, false
	}
	needle := strings.ToLower(query)
	for _, rec := range players.Records {
		full := strings.ToLower(recString(rec, "first_name") + " " + recString(rec, "second_name"))
		if full == needle || strings.ToLower(recString(rec, "web_name")) == needle {
			return recInt(rec, "id"), true
		}
	}
	for _, rec := range players.Records {
		if strings.Contains(strings.ToLower(recString(rec, "first_name")), needle) ||
			strings.Contains(strings.ToLower(recString(rec, "second_name")), needle) ||
			strings.Contains(strings.ToLower(recString(rec, "web_name")), needle) {
			return recInt(rec, "id"), true
		}
	}
	return 0, false
}

func recString(rec table.Record, field string) string {
	s, _ := rec[field].(string)
	return s
}

func recInt(rec table.Record, field string) int {
	f, _ := rec[field].(float64)
	return int(f)
}

func recBool(rec table.Record, field string) bool {
	b, _ := rec[field].(bool)
	return b
}
