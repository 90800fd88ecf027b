package handlers

import (
	"encoding/json"
	"net/http"
)

type schema = map[string]interface{}

func queryParam(name, description, typ string) schema {
	return schema{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    false,
		"schema":      schema{"type": typ},
	}
}

func jsonResponse(description string, body schema) schema {
	return schema{
		"description": description,
		"content": schema{
			"application/json": schema{"schema": body},
		},
	}
}

func object(properties schema) schema {
	return schema{"type": "object", "properties": properties}
}

func nullableNumber() schema {
	return schema{"type": "number", "nullable": true}
}

var errorSchema = object(schema{
	"error":   schema{"type": "string"},
	"message": schema{"type": "string"},
	"code":    schema{"type": "integer"},
})

var observationSchema = object(schema{
	"id":           schema{"type": "integer"},
	"location_id":  schema{"type": "integer"},
	"timestamp":    schema{"type": "string", "format": "date-time"},
	"irradiance":   nullableNumber(),
	"temperature":  nullableNumber(),
	"zenith_angle": nullableNumber(),
	"created_at":   schema{"type": "string", "format": "date-time"},
})

var modelRunSchema = object(schema{
	"id":                schema{"type": "integer"},
	"run_id":            schema{"type": "string", "format": "uuid"},
	"location_id":       schema{"type": "integer", "nullable": true},
	"season":            schema{"type": "integer", "enum": []int{1, 2, 3, 4}},
	"intercept":         schema{"type": "number"},
	"temperature_coef":  schema{"type": "number"},
	"zenith_angle_coef": schema{"type": "number"},
	"r2":                schema{"type": "number"},
	"mae":               schema{"type": "number"},
	"mse":               schema{"type": "number"},
	"train_r2":          schema{"type": "number"},
	"train_size":        schema{"type": "integer"},
	"test_size":         schema{"type": "integer"},
	"created_at":        schema{"type": "string", "format": "date-time"},
})

var pipelineSchema = object(schema{
	"run_id":       schema{"type": "string", "format": "uuid"},
	"records":      schema{"type": "integer"},
	"cleaned_path": schema{"type": "string"},
	"availability": schema{"type": "string"},
	"selection": object(schema{
		"input":           schema{"type": "integer"},
		"selected":        schema{"type": "integer"},
		"dropped_missing": schema{"type": "integer"},
		"dropped_zero":    schema{"type": "integer"},
	}),
	"seasons": schema{
		"type": "object",
		"additionalProperties": object(schema{
			"records":  schema{"type": "integer"},
			"equation": schema{"type": "string"},
			"r2":       schema{"type": "number"},
			"mae":      schema{"type": "number"},
			"mse":      schema{"type": "number"},
			"train_r2": schema{"type": "number"},
		}),
	},
	"failures": schema{"type": "object", "additionalProperties": schema{"type": "string"}},
})

func openAPIDocument() schema {
	locationParams := []schema{
		queryParam("lat", "Location latitude, must match an ingested location", "number"),
		queryParam("lon", "Location longitude, must match an ingested location", "number"),
	}

	return schema{
		"openapi": "3.0.0",
		"info": schema{
			"title":       "Solar Platform API",
			"description": "Hourly solar irradiance ingestion from NASA POWER, cleaning, and per-season regression models",
			"version":     "1.0.0",
		},
		"servers": []schema{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": schema{
			"/api/observations": schema{
				"get": schema{
					"summary":     "List cleaned hourly observations",
					"description": "Cleaned records with null for missing values, ordered by time",
					"parameters": append(locationParams,
						queryParam("start", "First day (YYYY-MM-DD)", "string"),
						queryParam("end", "Last day (YYYY-MM-DD)", "string"),
						queryParam("page", "Page number (default: 1)", "integer"),
						queryParam("limit", "Records per page (default: 100, max: 1000)", "integer"),
					),
					"responses": schema{
						"200": jsonResponse("Paginated observations", object(schema{
							"data":        schema{"type": "array", "items": observationSchema},
							"total":       schema{"type": "integer"},
							"page":        schema{"type": "integer"},
							"limit":       schema{"type": "integer"},
							"total_pages": schema{"type": "integer"},
						})),
						"404": jsonResponse("Unknown location", errorSchema),
						"503": jsonResponse("Database disabled", errorSchema),
					},
				},
			},
			"/api/models": schema{
				"get": schema{
					"summary":     "List seasonal model runs",
					"description": "Fitted coefficients and test metrics per season, newest first",
					"parameters": append(locationParams,
						queryParam("season", "Season code 1-4 or name (Winter, Spring, Summer, Fall)", "string"),
						queryParam("run_id", "Restrict to one pipeline run", "string"),
						queryParam("limit", "Maximum rows (default: 100)", "integer"),
					),
					"responses": schema{
						"200": jsonResponse("Model runs", object(schema{
							"data":  schema{"type": "array", "items": modelRunSchema},
							"count": schema{"type": "integer"},
						})),
						"400": jsonResponse("Invalid season", errorSchema),
					},
				},
			},
			"/api/pipeline/run": schema{
				"post": schema{
					"summary":     "Run ingestion and modeling",
					"description": "Fetches the location from NASA POWER, cleans it and fits one regression per season. Body fields override the configured location.",
					"requestBody": schema{
						"required": false,
						"content": schema{
							"application/json": schema{"schema": object(schema{
								"name":      schema{"type": "string"},
								"latitude":  schema{"type": "number"},
								"longitude": schema{"type": "number"},
								"start":     schema{"type": "string", "description": "YYYYMMDD"},
								"end":       schema{"type": "string", "description": "YYYYMMDD"},
							})},
						},
					},
					"responses": schema{
						"200": jsonResponse("Run finished", pipelineSchema),
						"400": jsonResponse("Invalid dates or coordinates out of range", errorSchema),
						"422": jsonResponse("Raw data failed integrity checks", errorSchema),
						"502": jsonResponse("NASA POWER request failed", errorSchema),
					},
				},
			},
			"/api/pipeline/last": schema{
				"get": schema{
					"summary": "Most recent pipeline run",
					"responses": schema{
						"200": jsonResponse("Last run", pipelineSchema),
						"404": jsonResponse("No run yet", errorSchema),
					},
				},
			},
			"/api/heatmap": schema{
				"get": schema{
					"summary":     "Animated irradiance heatmap",
					"description": "HTML page generated by the gridmap command",
					"responses": schema{
						"200": schema{"description": "HTML page", "content": schema{"text/html": schema{"schema": schema{"type": "string"}}}},
						"404": jsonResponse("No heatmap generated", errorSchema),
					},
				},
			},
			"/health": schema{
				"get": schema{
					"summary": "Health check",
					"responses": schema{
						"200": jsonResponse("API is healthy", object(schema{
							"status":   schema{"type": "string"},
							"database": schema{"type": "string"},
						})),
						"503": jsonResponse("Database unreachable", object(schema{
							"status":   schema{"type": "string"},
							"database": schema{"type": "string"},
						})),
					},
				},
			},
			"/metrics": schema{
				"get": schema{
					"summary": "Prometheus metrics",
					"responses": schema{
						"200": schema{"description": "Prometheus text format", "content": schema{"text/plain": schema{"schema": schema{"type": "string"}}}},
					},
				},
			},
		},
	}
}

// OpenAPISpec serves the OpenAPI 3.0 document of the API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(openAPIDocument())
}
