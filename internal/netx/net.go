// Package netx holds HTTP helpers used by the CLI.
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

type uploadResponse struct {
	Success  int    `json:"success"`
	ImageURL string `json:"image_url"`
}

// UploadProductImage posts data as the multipart field "product" to
// baseURL/upload and returns the image URL reported by the server.
func UploadProductImage(ctx context.Context, client *http.Client, baseURL, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("product", filename)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	url := strings.TrimRight(baseURL, "/") + "/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.Success != 1 || out.ImageURL == "" {
		return "", fmt.Errorf("upload rejected")
	}
	return out.ImageURL, nil
}
