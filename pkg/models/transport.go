package models

// AnalyzeResponse is returned by POST /analyze on success.
type AnalyzeResponse struct {
	FileName          string          `json:"file_name"`
	PreviewURL        string          `json:"preview_url"`
	Result            *AnalysisResult `json:"result"`
	ProcessingTimeSec float64         `json:"processing_time_sec"`
}

// StateResponse is the rendering collaborator's view of the presentation
// state, returned by GET /state.
type StateResponse struct {
	State      string          `json:"state"`
	PreviewURL string          `json:"preview_url,omitempty"`
	Error      string          `json:"error,omitempty"`
	Result     *AnalysisResult `json:"result,omitempty"`
	UpdatedAt  string          `json:"updated_at,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
