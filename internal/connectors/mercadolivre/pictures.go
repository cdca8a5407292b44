package mercadolivre

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

type picture struct {
	ID string `json:"id"`
}

// UploadPicture uploads picture bytes as multipart form data.
func (c *Client) UploadPicture(ctx context.Context, token domain.AccessToken, filename string, r io.Reader) (string, error) {
	const callContext = "image_upload"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", newUnexpectedError(callContext, 0, fmt.Errorf("create form file: %w", err), nil)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", newUnexpectedError(callContext, 0, fmt.Errorf("read picture: %w", err), nil)
	}
	if err := w.Close(); err != nil {
		return "", newUnexpectedError(callContext, 0, fmt.Errorf("close form: %w", err), nil)
	}

	status, body, err := c.do(ctx, "POST", "/pictures/items/upload", callContext, token, w.FormDataContentType(), buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("upload picture: %w", err)
	}
	return decodePicture(callContext, status, body)
}

// RegisterPictureURL registers a publicly reachable picture.
func (c *Client) RegisterPictureURL(ctx context.Context, token domain.AccessToken, sourceURL string) (string, error) {
	const callContext = "image_upload"

	var p picture
	if err := c.Post(ctx, "/pictures", callContext, token, map[string]string{"source": sourceURL}, &p); err != nil {
		return "", fmt.Errorf("register picture: %w", err)
	}
	if p.ID == "" {
		return "", newUnexpectedError(callContext, 0, fmt.Errorf("response without picture id"), nil)
	}
	return p.ID, nil
}

func decodePicture(callContext string, status int, body []byte) (string, error) {
	var p picture
	if err := json.Unmarshal(body, &p); err != nil {
		return "", newUnexpectedError(callContext, status, fmt.Errorf("decode response: %w", err), body)
	}
	if p.ID == "" {
		return "", newUnexpectedError(callContext, status, fmt.Errorf("response without picture id"), body)
	}
	return p.ID, nil
}
