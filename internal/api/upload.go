package api

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// MaxUploadSize caps both file and image uploads.
const MaxUploadSize = 10 << 20 // 10 MiB

// Validation failures are surfaced to the user before any request is
// issued.
var (
	ErrUploadTooLarge   = errors.New("upload exceeds the 10MB limit")
	ErrUploadBadType    = errors.New("upload content type not allowed")
	ErrUploadEmptyValue = errors.New("no upload content provided")
)

var allowedFileTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/json": {},
	"application/xml":  {},
	"text/xml":         {},
	"application/zip":  {},
	"text/csv":         {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"application/vnd.ms-excel": {},
}

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
}

func validateUpload(name, contentType string, size int64, allowed map[string]struct{}) error {
	if name == "" || size == 0 {
		return ErrUploadEmptyValue
	}
	if _, ok := allowed[contentType]; !ok {
		return fmt.Errorf("%w: %s", ErrUploadBadType, contentType)
	}
	if size > MaxUploadSize {
		return ErrUploadTooLarge
	}
	return nil
}

// UploadFile sends a document attachment. Disallowed types and
// oversize payloads are rejected client-side.
func (c *Client) UploadFile(ctx context.Context, chatID, senderID, name, contentType string, size int64, r io.Reader) error {
	if err := validateUpload(name, contentType, size, allowedFileTypes); err != nil {
		return err
	}
	return c.upload(ctx, "/api/v1/chat/"+chatID+"/upload-file", senderID, name, r)
}

// UploadImage sends an image attachment; only JPEG, PNG and GIF pass.
func (c *Client) UploadImage(ctx context.Context, chatID, senderID, name, contentType string, size int64, r io.Reader) error {
	if err := validateUpload(name, contentType, size, allowedImageTypes); err != nil {
		return err
	}
	return c.upload(ctx, "/api/v1/chat/"+chatID+"/upload-image", senderID, name, r)
}

func (c *Client) upload(ctx context.Context, url, senderID, name string, r io.Reader) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"sender_id": senderID}).
		SetFileReader("file", name, r).
		Post(url)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("upload: status %d", resp.StatusCode())
	}
	return nil
}
