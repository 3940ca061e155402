// Package storage uploads profile images to a Supabase-compatible object store.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/config"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

const uploadTimeout = 30 * time.Second

// Error is a storage API failure.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s (status %d)", e.Message, e.StatusCode)
}

type Client struct {
	storageURL string
	serviceKey string
	bucket     string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
	now        func() time.Time
}

var _ ports.ProfileImageStore = (*Client)(nil)

// NewClient targets storageURL, the object store root such as
// https://<project>.supabase.co/storage/v1.
func NewClient(storageURL, serviceKey, bucket string, logger *zap.Logger) *Client {
	return &Client{
		storageURL: strings.TrimRight(storageURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: uploadTimeout},
		cb:         config.NewCircuitBreaker(config.BreakerStorage, logger),
		logger:     logger,
		now:        time.Now,
	}
}

// StoreProfileImage normalizes data and uploads it as {userID}_{unixMillis}.jpg.
func (c *Client) StoreProfileImage(ctx context.Context, userID string, data []byte) (string, error) {
	normalized, err := NormalizeImage(data, MaxImageSide)
	if err != nil {
		c.logger.Warn("rejected profile image", zap.String("user_id", userID), zap.Error(err))
		if errors.Is(err, ErrImageTooLarge) {
			return "", domain.NewValidationError("image", fmt.Sprintf("must be at most %dx%d pixels", maxSourceSide, maxSourceSide))
		}
		return "", domain.NewValidationError("image", "must be a PNG, JPEG or GIF image")
	}

	objectPath := fmt.Sprintf("%s_%d.jpg", userID, c.now().UnixMilli())
	if err := c.Upload(ctx, objectPath, normalized, "image/jpeg"); err != nil {
		return "", err
	}
	return c.PublicURL(objectPath), nil
}

// Upload writes data to objectPath in the configured bucket, replacing any existing object.
func (c *Client) Upload(ctx context.Context, objectPath string, data []byte, contentType string) error {
	urlStr := fmt.Sprintf("%s/object/%s/%s", c.storageURL, c.bucket, url.PathEscape(objectPath))

	_, err := c.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
		req.Header.Set("apikey", c.serviceKey)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("x-upsert", "true")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("upload request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode >= 400 {
			return nil, parseError(body, resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		c.logger.Error("object upload failed", zap.String("path", objectPath), zap.Error(err))
		return err
	}
	return nil
}

func (c *Client) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.storageURL, c.bucket, url.PathEscape(objectPath))
}

func parseError(body []byte, statusCode int) error {
	var errResp struct {
		StatusCode string `json:"statusCode"`
		Error      string `json:"error"`
		Message    string `json:"message"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil {
		return &Error{Code: "unknown", Message: string(body), StatusCode: statusCode}
	}

	msg := errResp.Message
	if msg == "" {
		msg = errResp.Error
	}
	return &Error{Code: errResp.Error, Message: msg, StatusCode: statusCode}
}
