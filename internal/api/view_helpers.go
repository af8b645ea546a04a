package api

import (
	"encoding/json"
	"fmt"
)

// RequestField extracts a top-level string field from contract request JSON.
func RequestField(requestJSON, field, fallback string) string {
	if requestJSON == "" {
		return fallback
	}
	var request map[string]any
	if err := json.Unmarshal([]byte(requestJSON), &request); err != nil {
		return fallback
	}
	value, ok := request[field].(string)
	if !ok || value == "" {
		return fallback
	}
	return value
}

// RequestTemplateID extracts the template identifier from request JSON.
func RequestTemplateID(requestJSON string) string {
	return RequestField(requestJSON, "template_id", "")
}

// RequestEntityName extracts the contracting party name from request JSON.
func RequestEntityName(requestJSON string) string {
	return parseRequestFields(requestJSON).entityName
}

// RequestSeries extracts the contract series from request JSON.
func RequestSeries(requestJSON string) string {
	return RequestField(requestJSON, "series", "")
}

// requestFields holds all commonly displayed request fields from a single JSON parse.
type requestFields struct {
	entityName string
	templateID string
	series     string
	duration   string
}

// parseRequestFields extracts all common request fields with a single JSON parse.
func parseRequestFields(requestJSON string) requestFields {
	if requestJSON == "" {
		return requestFields{entityName: "Unknown"}
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(requestJSON), &raw); err != nil {
		return requestFields{entityName: "Unknown"}
	}

	str := func(m map[string]any, key, fallback string) string {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
		return fallback
	}

	fields := requestFields{
		entityName: "Unknown",
		templateID: str(raw, "template_id", ""),
		series:     str(raw, "series", ""),
	}
	if entity, ok := raw["entity"].(map[string]any); ok {
		fields.entityName = str(entity, "name", "Unknown")
	}
	if terms, ok := raw["terms"].(map[string]any); ok {
		if years, ok := terms["duration_years"].(float64); ok && years >= 1 {
			if int(years) == 1 {
				fields.duration = "1 year"
			} else {
				fields.duration = fmt.Sprintf("%d years", int(years))
			}
		}
	}
	return fields
}
