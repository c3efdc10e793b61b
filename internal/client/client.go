// Package client sends screenshots to the ingestion endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"shotbox/internal/submit"
)

const UploadPath = "/api/upload-image"

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upload endpoint returned %d", e.StatusCode)
	}
	return fmt.Sprintf("upload endpoint returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	endpoint string
	http     *http.Client
}

func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
	}
}

// Upload implements submit.Uploader.
func (c *Client) Upload(ctx context.Context, req submit.Request) (submit.Result, error) {
	body, contentType, err := encodeForm(req)
	if err != nil {
		return submit.Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+UploadPath, body)
	if err != nil {
		return submit.Result{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return submit.Result{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return submit.Result{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &failure)
		return submit.Result{}, &StatusError{StatusCode: resp.StatusCode, Message: failure.Error}
	}

	var result submit.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return submit.Result{}, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

func encodeForm(req submit.Request) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.Candidate.Name))
	mediaType := req.Candidate.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	header.Set("Content-Type", mediaType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(req.Candidate.Data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}

	tagList := req.Tags
	if tagList == nil {
		tagList = []string{}
	}
	encodedTags, err := json.Marshal(tagList)
	if err != nil {
		return nil, "", fmt.Errorf("encode tags: %w", err)
	}
	if err := writer.WriteField("tags", string(encodedTags)); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("category", req.Category); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &body, writer.FormDataContentType(), nil
}
