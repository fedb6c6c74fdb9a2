package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	perr "streamtags/internal/platform/errors"
	"streamtags/internal/services/api/docs"
)

// docReader is a seam so tests can feed an arbitrary document
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// serveDocJSON serves the generated spec after normalizing it for the UI
func serveDocJSON(o Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}

		ensureServers(spec, o.Server)
		if o.TitleSuffix != "" {
			if info, ok := spec["info"].(map[string]any); ok {
				if title, ok := info["title"].(string); ok {
					info["title"] = title + " " + o.TitleSuffix
				}
			}
		}
		ensureEnvelopeSchema(spec)
		addDefaultResponse(spec, http.StatusBadRequest, perr.ErrorCodeValidation, "platform must be one of [twitch kick youtube tiktok instagram x]")
		addDefaultResponse(spec, http.StatusInternalServerError, perr.ErrorCodePanic, "panic recovered")

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// ensureServers pins the spec to OAS 3.0.3, which the bundled UI renders,
// and sets servers when the generator left it out
func ensureServers(spec map[string]any, url string) {
	delete(spec, "swagger")
	if v, ok := spec["openapi"].(string); !ok || strings.HasPrefix(v, "3.1") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": url}}
	}
}

// ensureEnvelopeSchema adds the error envelope every failure is written with
func ensureEnvelopeSchema(spec map[string]any) {
	comps, ok := spec["components"].(map[string]any)
	if !ok {
		comps = map[string]any{}
		spec["components"] = comps
	}
	schemas, ok := comps["schemas"].(map[string]any)
	if !ok {
		schemas = map[string]any{}
		comps["schemas"] = schemas
	}
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	schemas["ErrorResponse"] = map[string]any{
		"type":        "object",
		"description": "Standard error response",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer", "format": "int32"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "integer", "format": "int32"},
			"error":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status"},
	}
}

// addDefaultResponse gives every operation lacking one an error response for status
func addDefaultResponse(spec map[string]any, status int, code perr.ErrorCode, msg string) {
	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	key, text := strconv.Itoa(status), http.StatusText(status)
	resp := map[string]any{
		"description": text,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				"example": map[string]any{
					"status_code": status,
					"status":      text,
					"code":        int(code),
					"error":       msg,
					"request_id":  "host/abc-000001",
				},
			},
		},
	}
	for _, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, opAny := range node {
			op, ok := opAny.(map[string]any)
			if !ok {
				continue
			}
			resps, ok := op["responses"].(map[string]any)
			if !ok {
				resps = map[string]any{}
				op["responses"] = resps
			}
			if _, exists := resps[key]; !exists {
				resps[key] = resp
			}
		}
	}
}
