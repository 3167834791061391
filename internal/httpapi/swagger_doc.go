//go:build swagger

package httpapi

// swaggerDoc is the OpenAPI 2.0 description served at /swagger/doc.json.
const swaggerDoc = `{
  "swagger": "2.0",
  "info": {
    "title": "sitecompare API",
    "description": "Compare up to ten candidate sites by their enriched demographics.",
    "version": "1.0"
  },
  "basePath": "/",
  "schemes": ["http"],
  "produces": ["application/json"],
  "paths": {
    "/types": {"get": {"summary": "List site types", "responses": {"200": {"description": "OK"}}}},
    "/features": {"get": {
      "summary": "List candidate features",
      "parameters": [{"name": "type", "in": "query", "type": "string"}],
      "responses": {"200": {"description": "OK"}, "400": {"description": "Unknown site type"}}
    }},
    "/features/{oid}": {"get": {
      "summary": "Go-to target for a feature",
      "parameters": [{"name": "oid", "in": "path", "required": true, "type": "integer"}],
      "responses": {"200": {"description": "OK"}, "400": {"description": "Bad id"}, "404": {"description": "Not found"}}
    }},
    "/sites": {
      "get": {"summary": "List mounted sites, newest first", "responses": {"200": {"description": "OK"}}},
      "post": {
        "summary": "Add a candidate site",
        "consumes": ["application/json"],
        "parameters": [{"name": "body", "in": "body", "required": true, "schema": {
          "type": "object",
          "properties": {"feature_id": {"type": "integer"}, "wait": {"type": "boolean"}}
        }}],
        "responses": {
          "201": {"description": "Added and enriched"},
          "202": {"description": "Added, enrichment pending"},
          "404": {"description": "Unknown feature"},
          "429": {"description": "At capacity"},
          "504": {"description": "Wait timed out"}
        }
      }
    },
    "/sites/{id}": {
      "get": {
        "summary": "Get a site",
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
      },
      "delete": {
        "summary": "Remove a site",
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
        "responses": {"204": {"description": "Removed"}, "404": {"description": "Not found"}}
      }
    },
    "/status": {"get": {"summary": "Occupancy and readiness", "responses": {"200": {"description": "OK"}}}},
    "/params": {"get": {"summary": "Application parameters", "responses": {"200": {"description": "OK"}}}},
    "/share": {"get": {
      "summary": "Share URL",
      "parameters": [{"name": "base", "in": "query", "type": "string"}],
      "responses": {"200": {"description": "OK"}}
    }},
    "/events": {"get": {"summary": "Server-Sent Events stream", "produces": ["text/event-stream"], "responses": {"200": {"description": "OK"}}}},
    "/ws": {"get": {"summary": "WebSocket event stream", "responses": {"101": {"description": "Switching protocols"}}}},
    "/healthz": {"get": {"summary": "Liveness", "produces": ["text/plain"], "responses": {"200": {"description": "ok"}}}},
    "/readyz": {"get": {"summary": "Readiness", "produces": ["text/plain"], "responses": {"200": {"description": "ready"}, "503": {"description": "loading"}}}}
  }
}`
