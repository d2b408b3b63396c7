package domain

// Response is the engine's answer to one search. It always resolves: a total
// upstream failure yields an empty Results slice, never an error.
type Response struct {
	Results        []ScoredItem `json:"results"`
	TotalCount     int          `json:"total_count"`
	ResponseTimeMs int64        `json:"response_time_ms"`
	FromCache      bool         `json:"from_cache"`
}
