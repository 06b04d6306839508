package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flexidx/collex/config"
	"github.com/flexidx/collex/internal/search"
	"github.com/flexidx/collex/services"
)

type searchResponseBody struct {
	Found       int               `json:"found"`
	Hits        []interface{}     `json:"hits"`
	FacetCounts []facetCountsBody `json:"facet_counts"`
}

type facetCountsBody struct {
	FieldName string           `json:"field_name"`
	Counts    []valueCountBody `json:"counts"`
}

type valueCountBody struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// SearchHandler handles GET /collections/:name/search. Query parameters:
// query, query_by, filter_by, facet_by, sort_by, page, per_page,
// typo_tokens_threshold, ranking, prefix (SPEC_FULL.md §6).
func (a *API) SearchHandler(c *gin.Context) {
	name := c.Param("name")
	found, err := a.manager.Get(name)
	if err != nil {
		writeError(c, err)
		return
	}
	var coll services.Searcher = found

	req := search.Request{
		Query:       c.Query("query"),
		QueryFields: splitCSV(c.Query("query_by")),
		FilterExpr:  c.Query("filter_by"),
		FacetFields: splitCSV(c.Query("facet_by")),
		SortBy:      parseSortBy(splitCSV(c.Query("sort_by"))),
		Page:        queryInt(c, "page"),
		PerPage:     queryInt(c, "per_page"),
		TypoBudget:  queryInt(c, "typo_tokens_threshold"),
		RankingMode: parseRankingMode(c.Query("ranking")),
		Prefix:      queryBool(c, "prefix"),
	}

	start := time.Now()
	result, err := coll.Search(req)
	elapsed := time.Since(start).Seconds()

	if a.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		a.metrics.SearchQueriesTotal.WithLabelValues(name, outcome).Inc()
		a.metrics.SearchLatency.WithLabelValues(name).Observe(elapsed)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	if a.metrics != nil {
		a.metrics.SearchHitsCount.WithLabelValues(name).Observe(float64(len(result.Hits)))
	}

	hits := make([]interface{}, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = h
	}

	facets := make([]facetCountsBody, len(result.Facets))
	for i, f := range result.Facets {
		counts := make([]valueCountBody, len(f.Counts))
		for j, vc := range f.Counts {
			counts[j] = valueCountBody{Value: vc.Value, Count: vc.Count}
		}
		facets[i] = facetCountsBody{FieldName: f.Field, Counts: counts}
	}

	c.JSON(http.StatusOK, searchResponseBody{
		Found:       result.Found,
		Hits:        hits,
		FacetCounts: facets,
	})
}

// splitCSV splits a comma-separated query parameter into its trimmed,
// non-empty parts. An empty input yields a nil (not empty) slice so the
// search engine's "fall back to every declared field" default applies.
func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return false
	}
	return v
}

// parseSortBy accepts each clause as "field:desc", "field:asc" or a bare
// "field" (ascending), matching the colon convention the filter grammar
// already uses (spec.md §6).
func parseSortBy(raw []string) []search.SortClause {
	clauses := make([]search.SortClause, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		field, dir, _ := strings.Cut(s, ":")
		clause := search.SortClause{Field: field}
		if strings.EqualFold(dir, "desc") {
			clause.Descending = true
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

func parseRankingMode(raw string) config.RankingMode {
	if strings.EqualFold(raw, string(config.RankingMaxScore)) {
		return config.RankingMaxScore
	}
	return config.RankingFrequency
}
