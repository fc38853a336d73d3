package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const myMemoryBaseURL = "https://api.mymemory.translated.net/get"

// MyMemoryService translates through the free MyMemory API. It ignores
// Request.Context and Request.Glossary: the API accepts only a single query
// string per call.
type MyMemoryService struct {
	email   string
	baseURL string
	client  *http.Client
}

func NewMyMemoryService(email string) *MyMemoryService {
	return &MyMemoryService{
		email:   email,
		baseURL: myMemoryBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *MyMemoryService) Name() string {
	return "mymemory"
}

func (s *MyMemoryService) Translate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	sourceLang := req.SourceLang
	if sourceLang == "" || sourceLang == "auto" {
		sourceLang = "en"
	}

	q := url.Values{}
	q.Set("q", req.Text)
	q.Set("langpair", fmt.Sprintf("%s|%s", sourceLang, req.TargetLang))
	if s.email != "" {
		q.Set("de", s.email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		ResponseData struct {
			TranslatedText string  `json:"translatedText"`
			Match          float64 `json:"match"`
		} `json:"responseData"`
		ResponseStatus  int    `json:"responseStatus"`
		ResponseDetails string `json:"responseDetails"`
		Matches         []struct {
			Translation string `json:"translation"`
		} `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if body.ResponseStatus != 200 {
		return nil, fmt.Errorf("API error: %s (%d)", body.ResponseDetails, body.ResponseStatus)
	}
	if body.ResponseData.TranslatedText == "" {
		return nil, fmt.Errorf("empty translation returned")
	}

	result := &Result{
		Text:       body.ResponseData.TranslatedText,
		Confidence: body.ResponseData.Match,
		Latency:    time.Since(start),
	}
	for _, m := range body.Matches {
		if m.Translation != "" && m.Translation != result.Text {
			result.Alternatives = append(result.Alternatives, m.Translation)
		}
	}
	return result, nil
}
