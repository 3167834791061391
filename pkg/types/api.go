package types

// AddSiteRequest is the payload of POST /sites.
type AddSiteRequest struct {
	// Object id of the candidate feature to compare.
	// example: 12
	FeatureID int64 `json:"feature_id" example:"12"`
	// If true, respond only once enrichment has finished (successfully or not).
	// example: false
	Wait bool `json:"wait,omitempty" example:"false"`
}

// SitesResponse wraps GET /sites.
type SitesResponse struct {
	Sites []SiteView `json:"sites"`
}

// FeaturesResponse wraps GET /features.
type FeaturesResponse struct {
	Features []FeatureItem `json:"features"`
}

// TypesResponse wraps GET /types.
type TypesResponse struct {
	Types []SiteTypeInfo `json:"types"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: site not found: 7b7c…
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Number of mounted candidate sites.
	// example: 3
	Occupied int `json:"occupied" example:"3"`
	// Maximum number of concurrent candidate sites.
	// example: 10
	Max int `json:"max" example:"10"`
	// Whether another site may be added.
	// example: true
	CanAcceptMore bool `json:"can_accept_more" example:"true"`
	// Short counter text, e.g. "3 of 10".
	// example: 3 of 10
	Label string `json:"label" example:"3 of 10"`
	// Sites still waiting for enrichment.
	// example: 1
	Pending int `json:"pending" example:"1"`
	// Sites whose enrichment failed.
	// example: 0
	Failed int `json:"failed" example:"0"`
	// Whether the feature source has been loaded.
	FeaturesReady bool `json:"features_ready"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// ParamsResponse is returned by GET /params.
type ParamsResponse struct {
	Params    map[string]any    `json:"params"`
	Shareable []string          `json:"shareable"`
	DataLayer map[string]string `json:"data_layer,omitempty"`
}

// ShareResponse is returned by GET /share.
type ShareResponse struct {
	URL string `json:"url"`
}
