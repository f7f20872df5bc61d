package models

// ImageBuffer holds the raw content of one uploaded file. It is produced once
// per upload, handed to the analysis pipeline, and replaced wholesale by the
// next upload. Callers must not mutate Data after construction.
type ImageBuffer struct {
	Name        string
	ContentType string
	Data        []byte
}

// AnalysisResult aggregates the two inference outputs for one image.
type AnalysisResult struct {
	// Description is the free-form caption returned by the captioning model.
	Description string `json:"description"`

	// TextContent is the text extracted by the OCR model, or the fallback
	// string when the model returned nothing.
	TextContent string `json:"text_content"`

	// Match compares the extracted text against a caller-supplied expected
	// text. Only present when expected text was provided with the upload.
	Match *MatchResult `json:"match,omitempty"`
}

// MatchResult scores the extracted text against an expected text.
type MatchResult struct {
	ExpectedText string  `json:"expected_text"`
	MatchScore   float64 `json:"match_score"`
	CER          float64 `json:"character_error_rate"`
}
