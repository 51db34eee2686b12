package api

const (
	// BaseURL is the base URL for the WMATA API
	BaseURL = "https://api.wmata.com"

	// EndpointPredictions returns next-train predictions for one or more
	// stations. The station codes are appended to the path, comma separated.
	EndpointPredictions = "/StationPrediction.svc/json/GetPrediction/"

	// HeaderAPIKey carries the subscription key
	HeaderAPIKey = "api_key"

	// HeaderRequestID carries a per-request id for log correlation
	HeaderRequestID = "X-Request-ID"
)
