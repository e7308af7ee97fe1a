// Package avatar downloads identity provider profile pictures so they can be
// served from the backend instead of hot-linked.
package avatar

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/errors"
	"github.com/Binwin6724/todo-calender-be/log"
	"go.uber.org/zap"
)

// DefaultMaxBytes is the largest image Client will download when MaxBytes is unset.
const DefaultMaxBytes = 5 << 20

// Client downloads avatar images.
type Client struct {
	HTTP *http.Client
	// MaxBytes caps the download size. Larger images are rejected.
	MaxBytes int64
}

// Fetch downloads the image at url and returns it with its content digest.
// Any failure, including a non-200 status, is returned as an error; callers
// treat that as "no image".
func (c *Client) Fetch(ctx context.Context, url string) (*todocal.ProfileImage, error) {
	const op errors.Op = "avatar.Fetch"

	if url == "" {
		return nil, errors.E(op, errors.Invalid, "empty image url")
	}

	logger := log.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.E(op, errors.Invalid, err)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.E(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.E(op, errors.Errorf("GET %s: status %d", url, resp.StatusCode))
	}

	maxBytes := c.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, errors.E(op, "read image", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, errors.E(op, errors.Errorf("image larger than %d bytes", maxBytes))
	}
	if len(data) == 0 {
		return nil, errors.E(op, "empty image")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = http.DetectContentType(data)
	}

	img := &todocal.ProfileImage{
		Data:        data,
		ContentType: contentType,
		Hash:        Digest(data),
		Size:        int64(len(data)),
	}

	logger.Debug("downloaded profile image",
		zap.String("content_type", img.ContentType),
		zap.Int64("size", img.Size))

	return img, nil
}

// Digest returns the hex SHA-256 digest of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ETag formats an image digest as a strong HTTP entity tag.
func ETag(hash string) string {
	return fmt.Sprintf("%q", hash)
}
