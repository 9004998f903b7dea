package response

type ResolveResponse struct {
	SessionID string `json:"session_id"`
	Outcome   string `json:"outcome"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
