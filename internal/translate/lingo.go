package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// LingoClient talks to a Lingo.dev-style translation API over HTTP.
// It implements Translator.
type LingoClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewLingoClient builds a client for the given endpoint. timeout bounds
// every request; a timed-out call surfaces as an ordinary error so the
// coordinator's fallback chain handles it like any other failure.
func NewLingoClient(baseURL, apiKey string, timeout time.Duration) *LingoClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LingoClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type singleRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

type singleResponse struct {
	TranslatedText string `json:"translatedText"`
}

// TranslateSingle translates one standalone text.
func (c *LingoClient) TranslateSingle(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	var resp singleResponse
	err := c.post(ctx, "/translate", singleRequest{
		Text:           text,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.TranslatedText == "" {
		return "", fmt.Errorf("translate: empty response")
	}
	return resp.TranslatedText, nil
}

type chatRequest struct {
	Conversation   []Turn `json:"conversation"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

type chatResponse struct {
	Conversation []Turn `json:"conversation"`
}

// TranslateConversation translates a whole conversation at once. The API
// must echo back the same number of turns in the same order; anything else
// is treated as a failed call.
func (c *LingoClient) TranslateConversation(ctx context.Context, turns []Turn, sourceLang, targetLang string) ([]Turn, error) {
	var resp chatResponse
	err := c.post(ctx, "/translate/chat", chatRequest{
		Conversation:   turns,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Conversation) != len(turns) {
		return nil, fmt.Errorf("translate chat: expected %d turns, got %d", len(turns), len(resp.Conversation))
	}
	return resp.Conversation, nil
}

type detectRequest struct {
	Text string `json:"text"`
}

type detectResponse struct {
	Language string `json:"language"`
}

// DetectLanguage asks the API for the ISO code of the given text.
// Falls back to "en" when the API reports nothing.
func (c *LingoClient) DetectLanguage(ctx context.Context, text string) (string, error) {
	var resp detectResponse
	if err := c.post(ctx, "/detect", detectRequest{Text: text}, &resp); err != nil {
		return "", err
	}
	if resp.Language == "" {
		return "en", nil
	}
	return resp.Language, nil
}

func (c *LingoClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("call %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
