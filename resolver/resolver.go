package resolver

import (
	"strings"

	"github.com/coindash/market-dashboard/coingecko"
)

// MatchKind classifies the outcome of resolving a name query
type MatchKind string

const (
	// NoMatch: the query was non-empty and matched nothing
	NoMatch MatchKind = "no_match"
	// SingleMatch: the filtered set collapsed to exactly one coin
	SingleMatch MatchKind = "single_match"
	// MultipleMatches: the filtered set holds several coins and needs
	// explicit disambiguation by id before any per-coin detail view
	MultipleMatches MatchKind = "multiple_matches"
)

// CoinOption identifies one disambiguation candidate
type CoinOption struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// ResolveResult is the outcome of narrowing a snapshot by a name query
type ResolveResult struct {
	Kind MatchKind `json:"kind"`

	// Match is set when Kind is SingleMatch
	Match *coingecko.CoinRecord `json:"match,omitempty"`

	// Candidates lists (id, name, symbol) options in snapshot order
	// when Kind is MultipleMatches
	Candidates []CoinOption `json:"candidates,omitempty"`

	// Filtered holds every matching record in snapshot order; this is
	// the row set the table view displays
	Filtered coingecko.MarketSnapshot `json:"filtered"`
}

// Resolve narrows the snapshot by a free-text name query.
//
// Matching is case-insensitive substring containment on the name field
// only. An empty query keeps the whole snapshot as the candidate set;
// per-coin detail still requires the set to collapse to one record
func Resolve(snapshot coingecko.MarketSnapshot, query string) ResolveResult {
	query = strings.TrimSpace(query)
	needle := strings.ToLower(query)

	filtered := make(coingecko.MarketSnapshot, 0, len(snapshot))
	for _, record := range snapshot {
		if needle == "" || strings.Contains(strings.ToLower(record.Name), needle) {
			filtered = append(filtered, record)
		}
	}

	switch {
	case len(filtered) == 0 && query != "":
		return ResolveResult{Kind: NoMatch, Filtered: filtered}

	case len(filtered) == 1:
		match := filtered[0]
		return ResolveResult{Kind: SingleMatch, Match: &match, Filtered: filtered}

	default:
		// Zero rows here only happens for an empty query over an empty
		// snapshot; the candidate set still equals the snapshot
		return ResolveResult{
			Kind:       MultipleMatches,
			Candidates: optionsOf(filtered),
			Filtered:   filtered,
		}
	}
}

// ResolveByID disambiguates a previous MultipleMatches result by exact
// coin id. Unknown ids resolve to NoMatch
func ResolveByID(snapshot coingecko.MarketSnapshot, id string) ResolveResult {
	record := snapshot.FindByID(id)
	if record == nil {
		return ResolveResult{Kind: NoMatch, Filtered: coingecko.MarketSnapshot{}}
	}

	match := *record
	return ResolveResult{
		Kind:     SingleMatch,
		Match:    &match,
		Filtered: coingecko.MarketSnapshot{match},
	}
}

func optionsOf(records coingecko.MarketSnapshot) []CoinOption {
	options := make([]CoinOption, 0, len(records))
	for _, record := range records {
		options = append(options, CoinOption{
			ID:     record.ID,
			Name:   record.Name,
			Symbol: record.Symbol,
		})
	}
	return options
}
