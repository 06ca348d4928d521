// Package deepl is a client for the DeepL v2 REST API: text translation,
// account usage, supported languages, and the asynchronous document
// translation workflow (upload, status, download).
package deepl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	proBaseURL  = "https://api.deepl.com/v2"
	freeBaseURL = "https://api-free.deepl.com/v2"

	// freeKeySuffix marks auth keys of DeepL API Free accounts, which are
	// served from a separate host.
	freeKeySuffix = ":fx"

	defaultTimeout = 2 * time.Minute
)

// Client talks to the DeepL API. A zero auth key is allowed at construction
// time; every call will then fail with an authorization error from the API.
type Client struct {
	authKey    string
	baseURL    string
	hc         *http.Client
	maxRetries int
}

// New creates a client. Keys ending in ":fx" are routed to the API Free
// endpoint, everything else to the Pro endpoint.
func New(authKey string) *Client {
	baseURL := proBaseURL
	if strings.HasSuffix(authKey, freeKeySuffix) {
		baseURL = freeBaseURL
	}
	return &Client{
		authKey:    authKey,
		baseURL:    baseURL,
		hc:         &http.Client{Timeout: defaultTimeout},
		maxRetries: 3,
	}
}

// APIError is a non-2xx response from the DeepL API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	switch e.StatusCode {
	case http.StatusForbidden:
		return fmt.Sprintf("authorization failed, check your auth key (%d): %s", e.StatusCode, msg)
	case 456:
		return fmt.Sprintf("character quota exceeded (%d): %s", e.StatusCode, msg)
	default:
		return fmt.Sprintf("DeepL API returned status %d: %s", e.StatusCode, msg)
	}
}

// Translate translates text into targetLang. An empty sourceLang lets the
// API detect the source language.
func (c *Client) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", strings.ToUpper(targetLang))
	if sourceLang != "" {
		form.Set("source_lang", strings.ToUpper(sourceLang))
	}

	body, err := c.postForm(ctx, "/translate", form)
	if err != nil {
		return "", err
	}

	var resp struct {
		Translations []struct {
			DetectedSourceLanguage string `json:"detected_source_language"`
			Text                   string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding translate response: %w", err)
	}
	if len(resp.Translations) == 0 {
		return "", fmt.Errorf("translate response contained no translations")
	}
	return resp.Translations[0].Text, nil
}

// Language is a language supported by the API.
type Language struct {
	Language string `json:"language"`
	Name     string `json:"name"`
}

// TargetLanguages lists the target languages supported by the API, in API
// order.
func (c *Client) TargetLanguages(ctx context.Context) ([]Language, error) {
	form := url.Values{}
	form.Set("type", "target")

	body, err := c.postForm(ctx, "/languages", form)
	if err != nil {
		return nil, err
	}

	var langs []Language
	if err := json.Unmarshal(body, &langs); err != nil {
		return nil, fmt.Errorf("decoding languages response: %w", err)
	}
	return langs, nil
}

// Usage is the account's character quota state.
type Usage struct {
	CharacterCount int64 `json:"character_count"`
	CharacterLimit int64 `json:"character_limit"`
}

// GetUsage reports the account's consumed and total character quota.
func (c *Client) GetUsage(ctx context.Context) (*Usage, error) {
	body, err := c.postForm(ctx, "/usage", url.Values{})
	if err != nil {
		return nil, err
	}

	var usage Usage
	if err := json.Unmarshal(body, &usage); err != nil {
		return nil, fmt.Errorf("decoding usage response: %w", err)
	}
	return &usage, nil
}

// DocumentHandle identifies an uploaded document job.
type DocumentHandle struct {
	DocumentID  string `json:"document_id"`
	DocumentKey string `json:"document_key"`
}

// DocumentStatus is one status poll result.
//
// Status is one of "queued", "translating", "done", "error".
// SecondsRemaining is an estimate that the API sometimes omits even while
// translating; -1 means absent.
type DocumentStatus struct {
	DocumentID       string `json:"document_id"`
	Status           string `json:"status"`
	SecondsRemaining int64  `json:"seconds_remaining"`
	BilledCharacters int64  `json:"billed_characters"`
	ErrorMessage     string `json:"error_message"`
}

// Done reports whether the document finished translating.
func (s *DocumentStatus) Done() bool { return s.Status == "done" }

// Failed reports whether the API gave up on the document.
func (s *DocumentStatus) Failed() bool { return s.Status == "error" }

// UploadDocument submits a document file for asynchronous translation and
// returns the handle used to poll and download it.
func (c *Client) UploadDocument(ctx context.Context, path, targetLang, sourceLang string) (*DocumentHandle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	mw.WriteField("target_lang", strings.ToUpper(targetLang))
	if sourceLang != "" {
		mw.WriteField("source_lang", strings.ToUpper(sourceLang))
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}

	body, err := c.post(ctx, "/document", mw.FormDataContentType(), buf.Bytes())
	if err != nil {
		return nil, err
	}

	var handle DocumentHandle
	if err := json.Unmarshal(body, &handle); err != nil {
		return nil, fmt.Errorf("decoding document upload response: %w", err)
	}
	if handle.DocumentID == "" || handle.DocumentKey == "" {
		return nil, fmt.Errorf("document upload response missing id or key")
	}
	return &handle, nil
}

// CheckDocumentStatus polls the translation state of an uploaded document.
func (c *Client) CheckDocumentStatus(ctx context.Context, handle *DocumentHandle) (*DocumentStatus, error) {
	form := url.Values{}
	form.Set("document_key", handle.DocumentKey)

	body, err := c.postForm(ctx, "/document/"+handle.DocumentID, form)
	if err != nil {
		return nil, err
	}

	status := DocumentStatus{SecondsRemaining: -1}
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("decoding document status response: %w", err)
	}
	return &status, nil
}

// DownloadDocument retrieves the translated document binary. Only valid
// once the status is "done".
func (c *Client) DownloadDocument(ctx context.Context, handle *DocumentHandle) ([]byte, error) {
	form := url.Values{}
	form.Set("document_key", handle.DocumentKey)

	return c.postForm(ctx, "/document/"+handle.DocumentID+"/result", form)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	return c.post(ctx, path, "application/x-www-form-urlencoded", []byte(form.Encode()))
}

// post sends an authenticated POST and returns the response body. Requests
// hitting 429 or 5xx are retried with exponential backoff; everything else
// surfaces as an APIError.
func (c *Client) post(ctx context.Context, path, contentType string, body []byte) ([]byte, error) {
	endpoint := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "DeepL-Auth-Key "+c.authKey)
		req.Header.Set("Content-Type", contentType)

		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("API request failed: %w", err)
			if attempt < c.maxRetries {
				if err := c.backoff(ctx, attempt, 0); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return respBody, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: apiMessage(respBody)}
			if attempt < c.maxRetries {
				if err := c.backoff(ctx, attempt, retryAfter(resp)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr

		case resp.StatusCode >= 500:
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: apiMessage(respBody)}
			if attempt < c.maxRetries {
				if err := c.backoff(ctx, attempt, 0); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr

		default:
			return nil, &APIError{StatusCode: resp.StatusCode, Message: apiMessage(respBody)}
		}
	}

	return nil, lastErr
}

// backoff sleeps 2^attempt seconds, or the server's Retry-After when given.
func (c *Client) backoff(ctx context.Context, attempt int, serverWait time.Duration) error {
	wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	if serverWait > 0 {
		wait = serverWait
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

// apiMessage extracts the "message" field DeepL error bodies carry.
func apiMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(body))
}
