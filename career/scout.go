package career

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/careersim/careersim-go/model"
)

const scoutSystem = `You are a labor-market analyst. From the search snippets provided,
produce structured market insights for each target role: requirements,
salary bands, demand, growth outlook, competition and education
expectations. When the snippets are thin, fall back on well-established
market knowledge and say so in the data.`

// ScoutMarket is the market_scout stage: a web search per target role,
// then one completion that distills the snippets into MarketInsights.
// Empty search results degrade to a placeholder snippet plus a warning
// rather than failing the run.
func (s *Stages) ScoutMarket(ctx context.Context, state State) (StateDelta, error) {
	start := time.Now()
	profile := state.CareerProfile
	if profile == nil {
		return StateDelta{}, fmt.Errorf("market_scout: no career profile in state")
	}

	roles := profile.SpecificRoles
	if len(roles) == 0 {
		roles = []string{"entry-level professional"}
	}
	country := profile.CurrentCountry
	if country == "" {
		country = "global"
	}

	var warnings []string
	var sb strings.Builder
	for _, role := range roles {
		query := fmt.Sprintf("%s salary requirements job market outlook %s", role, country)
		docs, err := s.Search.Search(ctx, query)
		if err != nil {
			return StateDelta{}, fmt.Errorf("market_scout: search %q: %w", role, err)
		}
		if len(docs) == 0 {
			fmt.Fprintf(&sb, "## %s\nNo live market data available; using general market knowledge.\n", role)
			warnings = append(warnings, fmt.Sprintf("No market data found for %q; insights are based on general knowledge.", role))
			continue
		}
		fmt.Fprintf(&sb, "## %s\n", role)
		for _, doc := range docs {
			fmt.Fprintf(&sb, "- %s: %s (%s)\n", doc.Title, doc.Snippet, doc.URL)
		}
	}

	req := model.Request{
		System: scoutSystem,
		Prompt: fmt.Sprintf(
			"Target roles: %s\nTarget fields: %s\nCountry: %s\n\nSearch snippets:\n%s\n\nReturn market insights with one target_roles entry per role.",
			strings.Join(roles, ", "), strings.Join(profile.TargetCareerFields, ", "), country, sb.String(),
		),
		Schema:      schema("target_roles", "target_country", "industry_health", "top_hiring_companies", "data_sources"),
		Temperature: 0.3,
	}

	var insights MarketInsights
	if err := completeJSON(ctx, s.Completer, NodeMarketScout, req, &insights); err != nil {
		return StateDelta{}, err
	}
	if insights.TargetCountry == "" {
		insights.TargetCountry = country
	}
	// Guarantee one insight per requested role so the gap analyst always
	// has something to compare against.
	for _, role := range roles {
		if !hasRole(insights.TargetRoles, role) {
			insights.TargetRoles = append(insights.TargetRoles, JobMarketInsight{
				RoleTitle:        role,
				DemandLevel:      "Medium",
				GrowthOutlook:    "Stable",
				CompetitionLevel: "Medium",
			})
		}
	}

	return StateDelta{
		MarketInsights: &insights,
		Warnings:       warnings,
		Timings:        timing(NodeMarketScout, start),
	}, nil
}

func hasRole(insights []JobMarketInsight, role string) bool {
	for _, in := range insights {
		if strings.EqualFold(in.RoleTitle, role) {
			return true
		}
	}
	return false
}
