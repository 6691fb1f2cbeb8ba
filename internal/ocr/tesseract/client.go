package tesseract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"cvquery-backend/internal/ocr"
)

// Client implements ocr.ImageRecognizer against a tesseract-server sidecar.
type Client struct {
	baseURL    string
	languages  string
	httpClient *http.Client
}

// NewClient constructs a tesseract-server client.
func NewClient(baseURL, languages string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("OCR_BASE_URL is required")
	}
	if strings.TrimSpace(languages) == "" {
		languages = "por+eng"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		languages: languages,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type tesseractResponse struct {
	Data struct {
		Stdout   string `json:"stdout"`
		Stderr   string `json:"stderr"`
		ExitCode int    `json:"exit_code"`
	} `json:"data"`
}

// Recognize posts the image to the sidecar and returns the recognized text.
func (c *Client) Recognize(ctx context.Context, fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image data")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	options := fmt.Sprintf(`{"languages":[%q]}`, c.languages)
	if err := writer.WriteField("options", options); err != nil {
		return "", err
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tesseract", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("ocr request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr backend http status %d", resp.StatusCode)
	}

	var parsed tesseractResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("ocr response parse: %w", err)
	}
	if parsed.Data.ExitCode != 0 {
		return "", fmt.Errorf("ocr failed: %s", strings.TrimSpace(parsed.Data.Stderr))
	}
	return strings.TrimSpace(parsed.Data.Stdout), nil
}

var _ ocr.ImageRecognizer = (*Client)(nil)
