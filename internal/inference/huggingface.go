package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxResponseBytes bounds how much of an inference response is read.
const maxResponseBytes = 1 << 20 // 1MB

// HFClient implements Engine against the Hugging Face Inference API. Raw
// image bytes are POSTed to a hosted model endpoint; the response carries a
// generated_text field.
type HFClient struct {
	baseURL      string
	token        string
	captionModel string
	ocrModel     string
	client       *http.Client
}

// NewHFClient creates a Hugging Face inference client. The token may be
// empty; it is passed through as an empty bearer credential and the service
// rejects the request.
func NewHFClient(baseURL, token, captionModel, ocrModel string, timeout time.Duration) *HFClient {
	// Connection pooling sized for two calls per upload
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HFClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		captionModel: captionModel,
		ocrModel:     ocrModel,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// Caption sends the image to the captioning model.
func (c *HFClient) Caption(ctx context.Context, image []byte) (string, error) {
	return c.generate(ctx, c.captionModel, image)
}

// ReadText sends the image to the OCR model.
func (c *HFClient) ReadText(ctx context.Context, image []byte) (string, error) {
	return c.generate(ctx, c.ocrModel, image)
}

// generation is one element of the Inference API response.
type generation struct {
	GeneratedText string `json:"generated_text"`
}

// generate POSTs the raw image bytes to a hosted model and extracts its
// generated text. No retry is attempted: one upload means exactly one request
// per model.
func (c *HFClient) generate(ctx context.Context, model string, image []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("model %s: invalid request: %w", model, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("model %s: %w", model, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("model %s: reading response: %w", model, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model %s: status code %d: %s", model, resp.StatusCode, truncate(body, 256))
	}

	// Hosted models answer with a one-element list; some return a bare object.
	var outputs []generation
	if err := json.Unmarshal(body, &outputs); err != nil {
		var single generation
		if err2 := json.Unmarshal(body, &single); err2 != nil {
			return "", fmt.Errorf("model %s: malformed response: %w", model, err)
		}
		return single.GeneratedText, nil
	}
	if len(outputs) == 0 {
		return "", fmt.Errorf("model %s: empty response", model)
	}
	return outputs[0].GeneratedText, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
