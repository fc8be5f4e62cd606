package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrNoTextFound is returned when an image contains no recognizable text.
// An empty or whitespace-only OCR result is a failure, not an empty success.
var ErrNoTextFound = errors.New("no text found in image")

// TextExtractor is the external OCR capability.
type TextExtractor interface {
	// ExtractText returns the text recognized in the image. hintLang is an
	// optional OCR language hint (e.g. "eng", "spa"); implementations may
	// ignore it.
	ExtractText(ctx context.Context, image []byte, hintLang string) (string, error)
}

// HTTPExtractor calls a tesseract-server-style OCR endpoint.
type HTTPExtractor struct {
	client  *http.Client
	baseURL string
}

// NewHTTPExtractor builds an extractor for the given endpoint.
func NewHTTPExtractor(baseURL string, timeout time.Duration) *HTTPExtractor {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPExtractor{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type extractResponse struct {
	Text string `json:"text"`
}

// ExtractText posts the image as multipart form data and returns the
// recognized text.
func (e *HTTPExtractor) ExtractText(ctx context.Context, image []byte, hintLang string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", "upload")
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if hintLang != "" {
		if err := writer.WriteField("language", hintLang); err != nil {
			return "", fmt.Errorf("write language field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/extract", &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call ocr: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ocr: unexpected status %d: %s", resp.StatusCode, payload)
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}
	return out.Text, nil
}
