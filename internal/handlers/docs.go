package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Smartfarm Platform API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Smartfarm Platform API",
			"description": "Paddock management with satellite NDVI imagery and weather data backed by PostgreSQL",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Smartfarm Platform Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/paddocks": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List paddocks",
					"description": "Retrieve all registered paddocks",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type":  "array",
										"items": map[string]string{"$ref": "#/components/schemas/Paddock"},
									},
								},
							},
						},
					},
				},
				"post": map[string]interface{}{
					"summary":     "Create paddock",
					"description": "Register a paddock from a name and GeoJSON polygon; the polygon is also registered with the satellite imagery provider",
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]string{"$ref": "#/components/schemas/PaddockRequest"},
							},
						},
					},
					"responses": map[string]interface{}{
						"201": map[string]interface{}{
							"description": "Paddock created",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]string{"$ref": "#/components/schemas/Paddock"},
								},
							},
						},
						"400": map[string]string{"description": "Validation error"},
					},
				},
			},
			"/api/paddocks/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Get paddock",
					"parameters": []map[string]interface{}{
						{
							"name":     "id",
							"in":       "path",
							"required": true,
							"schema":   map[string]string{"type": "string", "format": "uuid"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]string{"description": "Successful response"},
						"404": map[string]string{"description": "Paddock not found"},
					},
				},
				"put": map[string]interface{}{
					"summary":     "Update paddock",
					"description": "Update name and geometry; a geometry change re-registers the provider polygon",
					"parameters": []map[string]interface{}{
						{
							"name":     "id",
							"in":       "path",
							"required": true,
							"schema":   map[string]string{"type": "string", "format": "uuid"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]string{"description": "Paddock updated"},
						"404": map[string]string{"description": "Paddock not found"},
					},
				},
				"delete": map[string]interface{}{
					"summary": "Delete paddock",
					"parameters": []map[string]interface{}{
						{
							"name":     "id",
							"in":       "path",
							"required": true,
							"schema":   map[string]string{"type": "string", "format": "uuid"},
						},
					},
					"responses": map[string]interface{}{
						"204": map[string]string{"description": "Paddock deleted"},
						"404": map[string]string{"description": "Paddock not found"},
					},
				},
			},
			"/api/paddocks/{id}/ndvi": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get paddock NDVI",
					"description": "Current NDVI statistics, available imagery dates, and the NDVI history series with a summary roll-up",
					"parameters": []map[string]interface{}{
						{
							"name":     "id",
							"in":       "path",
							"required": true,
							"schema":   map[string]string{"type": "string", "format": "uuid"},
						},
						{
							"name":        "start_date",
							"in":          "query",
							"description": "Window start (RFC3339 or YYYY-MM-DD, default 30 days ago)",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "end_date",
							"in":          "query",
							"description": "Window end (RFC3339 or YYYY-MM-DD, default now)",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]string{"description": "Successful response"},
						"404": map[string]string{"description": "Paddock not found or no imagery available"},
					},
				},
			},
			"/api/weather": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get current weather",
					"description": "Current weather for a location, cached hourly",
					"parameters": []map[string]interface{}{
						{
							"name":     "lat",
							"in":       "query",
							"required": true,
							"schema":   map[string]interface{}{"type": "number", "minimum": -90, "maximum": 90},
						},
						{
							"name":     "lon",
							"in":       "query",
							"required": true,
							"schema":   map[string]interface{}{"type": "number", "minimum": -180, "maximum": 180},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]string{"description": "Successful response"},
						"400": map[string]string{"description": "Missing or invalid coordinates"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": map[string]string{"description": "Service healthy"},
						"503": map[string]string{"description": "Database unreachable"},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"PaddockRequest": map[string]interface{}{
					"type":     "object",
					"required": []string{"name", "geometry"},
					"properties": map[string]interface{}{
						"name":     map[string]interface{}{"type": "string", "maxLength": 255},
						"geometry": map[string]string{"type": "object", "description": "GeoJSON Polygon"},
					},
				},
				"Paddock": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"id":              map[string]string{"type": "string", "format": "uuid"},
						"name":            map[string]string{"type": "string"},
						"geometry":        map[string]string{"type": "object"},
						"area":            map[string]string{"type": "number"},
						"agro_polygon_id": map[string]interface{}{"type": "string", "nullable": true},
						"created_at":      map[string]string{"type": "string", "format": "date-time"},
						"updated_at":      map[string]string{"type": "string", "format": "date-time"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
