package handlers

import (
	"net/http"
	"strings"
)

type docParam struct {
	name        string
	in          string
	kind        string
	description string
	required    bool
}

type docOperation struct {
	method  string
	path    string
	tag     string
	summary string
	params  []docParam
}

func queryParam(name, kind, description string) docParam {
	return docParam{name: name, in: "query", kind: kind, description: description}
}

func requiredParam(p docParam) docParam {
	p.required = true
	return p
}

func pathParam(name, kind, description string) docParam {
	return docParam{name: name, in: "path", kind: kind, description: description, required: true}
}

var (
	contextParams = []docParam{
		queryParam("season_year", "integer", "Season year"),
		queryParam("division", "integer", "Division code"),
		queryParam("gender", "string", "M or F"),
		queryParam("scoring_group", "string", "division, region_<id> or conference_<id>"),
		queryParam("checkpoint_date", "string", "Snapshot date (YYYY-MM-DD); omit for the live ranking"),
		queryParam("algorithm_type", "string", "light (default) or heavy"),
	}
	groupParams = []docParam{
		queryParam("season_year", "integer", "Season year"),
		queryParam("rank_group_type", "string", "D, R or C (default D)"),
		queryParam("rank_group_fk", "integer", "Region or conference id"),
		queryParam("gender", "string", "M or F"),
		queryParam("checkpoint_date", "string", "Snapshot date (YYYY-MM-DD)"),
	}
	pageParams = []docParam{
		queryParam("limit", "integer", "Page size"),
		queryParam("offset", "integer", "Rows to skip"),
	}
	filterParams = []docParam{
		queryParam("search", "string", "Name search, at least 2 characters"),
		queryParam("region", "string", "Region name"),
		queryParam("conference", "string", "Conference name"),
	}
)

func joinParams(groups ...[]docParam) []docParam {
	var out []docParam
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var docOperations = []docOperation{
	{"get", "/health", "system", "Store connectivity and table counts", nil},
	{"get", "/athletes", "athletes", "List athlete rankings", joinParams(contextParams, filterParams, pageParams, []docParam{queryParam("min_races", "integer", "Minimum races")})},
	{"get", "/athletes/{athlete_id}", "athletes", "Get one athlete ranking", joinParams([]docParam{pathParam("athlete_id", "integer", "Athlete id")}, contextParams)},
	{"get", "/athletes/team/{team_id}/roster", "athletes", "List a team's ranked athletes", joinParams([]docParam{pathParam("team_id", "integer", "Team id")}, contextParams, pageParams)},
	{"get", "/teams", "teams", "List team rankings", joinParams(contextParams, filterParams, pageParams)},
	{"get", "/teams/{team_id}", "teams", "Get one team ranking", joinParams([]docParam{pathParam("team_id", "integer", "Team id")}, contextParams)},
	{"get", "/teams/{team_id}/resume", "teams", "Get a team's season resume", []docParam{pathParam("team_id", "integer", "Team id"), queryParam("season_year", "integer", "Season year"), queryParam("division", "integer", "Division code"), queryParam("gender", "string", "M or F")}},
	{"get", "/components/athletes", "components", "Component breakdowns for several athletes", joinParams([]docParam{requiredParam(queryParam("ids", "string", "Comma separated athlete ids, at most 100"))}, contextParams)},
	{"get", "/components/athletes/{athlete_id}", "components", "Component breakdown for one athlete", joinParams([]docParam{pathParam("athlete_id", "integer", "Athlete id")}, contextParams)},
	{"get", "/components/athletes/{athlete_id}/comparison", "components", "Athlete standing within every component", joinParams([]docParam{pathParam("athlete_id", "integer", "Athlete id")}, contextParams)},
	{"get", "/components/athletes/{athlete_id}/discrepancy", "components", "Not implemented", []docParam{pathParam("athlete_id", "integer", "Athlete id")}},
	{"get", "/components/leaderboard", "components", "Component leaderboard", joinParams([]docParam{requiredParam(queryParam("component", "string", "saga, sewr, osma or xcri"))}, contextParams, filterParams, pageParams)},
	{"get", "/components/distribution/{component}", "components", "Component score distribution", joinParams([]docParam{pathParam("component", "string", "saga, sewr, osma or xcri")}, contextParams)},
	{"get", "/components/biggest-discrepancies", "components", "Not implemented", nil},
	{"get", "/team-knockout", "team-knockout", "List knockout rankings", joinParams(groupParams, pageParams, []docParam{queryParam("search", "string", "Team name search")})},
	{"get", "/team-knockout/{team_id}", "team-knockout", "Get one knockout ranking", joinParams([]docParam{pathParam("team_id", "integer", "Team id")}, groupParams)},
	{"get", "/team-knockout/matchups", "team-knockout", "A team's matchups and record", joinParams([]docParam{requiredParam(queryParam("team_id", "integer", "Team id"))}, groupParams, pageParams)},
	{"get", "/team-knockout/matchups/head-to-head", "team-knockout", "Head-to-head record", joinParams([]docParam{requiredParam(queryParam("team_a_id", "integer", "First team")), requiredParam(queryParam("team_b_id", "integer", "Second team"))}, groupParams)},
	{"get", "/team-knockout/matchups/common-opponents", "team-knockout", "Records against shared opponents", joinParams([]docParam{requiredParam(queryParam("team_a_id", "integer", "First team")), requiredParam(queryParam("team_b_id", "integer", "Second team"))}, groupParams)},
	{"get", "/team-knockout/matchups/meet/{race_id}", "team-knockout", "Every matchup at one race", []docParam{pathParam("race_id", "integer", "Race id"), queryParam("season_year", "integer", "Season year"), queryParam("checkpoint_date", "string", "Snapshot date (YYYY-MM-DD)")}},
	{"get", "/metadata", "metadata", "List calculation runs", joinParams(contextParams, pageParams)},
	{"get", "/metadata/latest", "metadata", "Latest live run per division and gender", nil},
	{"get", "/metadata/{metadata_id}", "metadata", "Get one calculation run", []docParam{pathParam("metadata_id", "integer", "Run id")}},
	{"get", "/metadata/summary/processing", "metadata", "Aggregate of every live run", nil},
	{"get", "/snapshots", "snapshots", "List checkpoints", joinParams([]docParam{queryParam("season_year", "integer", "Season year")}, pageParams)},
	{"get", "/snapshots/{date}/athletes", "snapshots", "Athlete rankings at a checkpoint", joinParams([]docParam{pathParam("date", "string", "YYYY-MM-DD"), queryParam("division", "integer", "Division code"), queryParam("gender", "string", "M or F"), queryParam("min_races", "integer", "Minimum races")}, filterParams, pageParams)},
	{"get", "/snapshots/{date}/teams", "snapshots", "Team rankings at a checkpoint", joinParams([]docParam{pathParam("date", "string", "YYYY-MM-DD"), queryParam("division", "integer", "Division code"), queryParam("gender", "string", "M or F")}, filterParams, pageParams)},
	{"get", "/snapshots/{date}/metadata", "snapshots", "Divisions ranked at a checkpoint", []docParam{pathParam("date", "string", "YYYY-MM-DD")}},
	{"post", "/feedback", "feedback", "Submit feedback (rate limited)", nil},
	{"get", "/feedback/status", "feedback", "Feedback integration status", nil},
}

// openAPIDocument renders docOperations as an OpenAPI 3.0 document
func openAPIDocument(version string) map[string]interface{} {
	errorResponse := map[string]interface{}{
		"description": "Error",
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]interface{}{"$ref": "#/components/schemas/Error"},
			},
		},
	}

	paths := map[string]interface{}{}
	for _, op := range docOperations {
		params := make([]map[string]interface{}, 0, len(op.params))
		for _, p := range op.params {
			params = append(params, map[string]interface{}{
				"name":        p.name,
				"in":          p.in,
				"description": p.description,
				"required":    p.required,
				"schema":      map[string]string{"type": p.kind},
			})
		}

		operation := map[string]interface{}{
			"summary":     op.summary,
			"tags":        []string{op.tag},
			"operationId": operationID(op),
			"parameters":  params,
			"responses": map[string]interface{}{
				"200":     map[string]interface{}{"description": "Successful response"},
				"default": errorResponse,
			},
		}
		if op.method == "post" {
			operation["requestBody"] = map[string]interface{}{
				"required": true,
				"content": map[string]interface{}{
					"application/json": map[string]interface{}{
						"schema": map[string]interface{}{"$ref": "#/components/schemas/FeedbackSubmission"},
					},
				},
			}
		}

		item, _ := paths[op.path].(map[string]interface{})
		if item == nil {
			item = map[string]interface{}{}
			paths[op.path] = item
		}
		item[op.method] = operation
	}

	return map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "XCRI Rankings API",
			"description": "Read API over the cross-country ranking pipeline's results",
			"version":     version,
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Error": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error":   map[string]string{"type": "string"},
						"message": map[string]string{"type": "string"},
						"code":    map[string]string{"type": "integer"},
						"detail":  map[string]string{"type": "string"},
					},
				},
				"FeedbackSubmission": map[string]interface{}{
					"type":     "object",
					"required": []string{"feedback_type", "message"},
					"properties": map[string]interface{}{
						"name":          map[string]interface{}{"type": "string", "maxLength": 100},
						"email":         map[string]interface{}{"type": "string", "maxLength": 100},
						"feedback_type": map[string]interface{}{"type": "string", "enum": []string{"bug", "feedback", "question"}},
						"message":       map[string]interface{}{"type": "string", "minLength": 10, "maxLength": 2000},
					},
				},
			},
		},
	}
}

func operationID(op docOperation) string {
	replacer := strings.NewReplacer("/", "_", "{", "", "}", "", "-", "_")
	return op.method + strings.TrimRight(replacer.Replace(op.path), "_")
}

// OpenAPISpec handles GET /api/docs/openapi.json
func (h *Handler) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, openAPIDocument(h.version), http.StatusOK)
}
