package tools

import (
	"context"
)

// LookupResult is the lookup_records tool output. Results are grouped by
// record family so the synthesizer can cite them separately.
type LookupResult struct {
	Results map[string]interface{} `json:"results"`
	Error   string                 `json:"error,omitempty"`
}

// LookupRecords searches the business database. Mode selects which record
// families are queried; "auto" and "prefill" query all of them.
func (r *Registry) LookupRecords(ctx context.Context, query, mode string, limit int) LookupResult {
	if r.records == nil {
		return LookupResult{Results: map[string]interface{}{}, Error: "database_not_configured"}
	}
	if mode == "" {
		mode = "auto"
	}
	if limit <= 0 {
		limit = 10
	}

	results := make(map[string]interface{})

	if mode == "clients" || mode == "auto" || mode == "prefill" {
		clients, err := r.records.SearchClients(ctx, query, limit)
		if err != nil {
			return LookupResult{Results: results, Error: err.Error()}
		}
		results["clients"] = clients
	}

	if mode == "materials" || mode == "auto" || mode == "prefill" {
		materials, err := r.records.RecentMaterials(ctx, limit)
		if err != nil {
			return LookupResult{Results: results, Error: err.Error()}
		}
		results["materials"] = materials
	}

	if mode == "history" || mode == "auto" || mode == "prefill" {
		history, err := r.records.RecentHistory(ctx, limit)
		if err != nil {
			return LookupResult{Results: results, Error: err.Error()}
		}
		results["history"] = history
	}

	return LookupResult{Results: results}
}
