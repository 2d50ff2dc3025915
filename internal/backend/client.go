// Package backend is the REST client for the content backend: extraction,
// generation and image jobs, account linking, and publishing.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"socialflow/internal/domain"
	"socialflow/internal/infra"
)

// Options configures the backend client.
type Options struct {
	BaseURL        string
	APIToken       string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the content backend.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	logger     *infra.Logger
}

// APIError carries the backend's error payload alongside the HTTP status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("backend: status %d", e.StatusCode)
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend: base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		baseURL:    baseURL,
		apiToken:   strings.TrimSpace(opts.APIToken),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// ExtractFile submits file bytes for text extraction.
func (c *Client) ExtractFile(ctx context.Context, filename string, data []byte) (*domain.ContentUpload, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("backend: build multipart: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("backend: build multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("backend: build multipart: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/extract", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var decoded extractResponse
	if err := c.do(req, &decoded); err != nil {
		return nil, err
	}
	return uploadFromResponse(decoded, domain.SourceKindFile), nil
}

// ExtractText submits pasted text for extraction.
func (c *Client) ExtractText(ctx context.Context, text string) (*domain.ContentUpload, error) {
	var decoded extractResponse
	if err := c.postJSON(ctx, "/extract", map[string]string{"text": text}, &decoded); err != nil {
		return nil, err
	}
	return uploadFromResponse(decoded, domain.SourceKindText), nil
}

// ExtractURL submits a URL for extraction. The URL must already be validated.
func (c *Client) ExtractURL(ctx context.Context, rawURL string) (*domain.ContentUpload, error) {
	var decoded extractResponse
	if err := c.postJSON(ctx, "/extract", map[string]string{"url": rawURL}, &decoded); err != nil {
		return nil, err
	}
	return uploadFromResponse(decoded, domain.SourceKindURL), nil
}

// StartGeneration requests a generation job and returns its task handle.
func (c *Client) StartGeneration(ctx context.Context, contentID string, platforms []domain.Platform, locale string) (string, error) {
	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, string(p))
	}
	var decoded taskAccepted
	if err := c.postJSON(ctx, "/generate", generateRequest{ContentID: contentID, Platforms: names, Locale: locale}, &decoded); err != nil {
		return "", err
	}
	if decoded.TaskID == "" {
		return "", errors.New("backend: generate response missing task id")
	}
	return decoded.TaskID, nil
}

// GenerationStatus queries a generation job once.
func (c *Client) GenerationStatus(ctx context.Context, taskID string) (*JobSnapshot, error) {
	return c.jobStatus(ctx, "/jobs/"+url.PathEscape(taskID))
}

// StartImageTask requests an image job and returns its task handle.
func (c *Client) StartImageTask(ctx context.Context, contentID, prompt string) (string, error) {
	var decoded taskAccepted
	if err := c.postJSON(ctx, "/image-task", imageTaskRequest{ContentID: contentID, Prompt: prompt}, &decoded); err != nil {
		return "", err
	}
	if decoded.TaskID == "" {
		return "", errors.New("backend: image-task response missing task id")
	}
	return decoded.TaskID, nil
}

// ImageTaskStatus queries an image job once.
func (c *Client) ImageTaskStatus(ctx context.Context, taskID string) (*JobSnapshot, error) {
	return c.jobStatus(ctx, "/image-task/"+url.PathEscape(taskID))
}

func (c *Client) jobStatus(ctx context.Context, path string) (*JobSnapshot, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var decoded jobStatusResponse
	if err := c.do(req, &decoded); err != nil {
		return nil, err
	}
	snapshot := &JobSnapshot{
		TaskID:      decoded.TaskID,
		Status:      mapJobStatus(decoded.Status),
		ErrorDetail: decoded.Error,
	}
	if len(decoded.Result) > 0 && string(decoded.Result) != "null" {
		var result jobResult
		if err := json.Unmarshal(decoded.Result, &result); err != nil {
			return nil, fmt.Errorf("backend: decode job result: %w", err)
		}
		snapshot.Fragments = decodeFragments(result.ContentJSON)
		for _, img := range result.Images {
			if img.URL != "" {
				snapshot.Images = append(snapshot.Images, domain.ImageAsset{URL: img.URL, Format: img.Format})
			}
		}
	}
	return snapshot, nil
}

// InitiateOAuth asks the backend for an authorization URL for the platform.
func (c *Client) InitiateOAuth(ctx context.Context, platform domain.Platform) (*OAuthInitiation, error) {
	var decoded OAuthInitiation
	if err := c.postJSON(ctx, "/accounts/initiate-oauth", initiateOAuthRequest{Platform: string(platform)}, &decoded); err != nil {
		return nil, err
	}
	if decoded.AuthorizationURL == "" || decoded.State == "" {
		return nil, errors.New("backend: initiate-oauth response incomplete")
	}
	return &decoded, nil
}

// ConnectAccount exchanges an authorization code for a linked account.
func (c *Client) ConnectAccount(ctx context.Context, platform domain.Platform, code, state string) (*domain.SocialAccount, error) {
	var decoded connectResponse
	if err := c.postJSON(ctx, "/accounts/connect", connectRequest{Platform: string(platform), Code: code, State: state}, &decoded); err != nil {
		return nil, err
	}
	if decoded.Account.ID == "" {
		return nil, errors.New("backend: connect response missing account")
	}
	account := &domain.SocialAccount{
		ID:          decoded.Account.ID,
		Platform:    platform,
		DisplayName: decoded.Account.AccountName,
		Handle:      decoded.Account.AccountHandle,
		IsActive:    decoded.Account.IsActive,
		ExpiresAt:   parseTime(decoded.Account.TokenExpiresAt),
		ConnectedAt: parseTime(decoded.Account.ConnectedAt),
	}
	if account.DisplayName == "" {
		account.DisplayName = platform.DisplayName()
	}
	return account, nil
}

// DisconnectAccount tells the backend to revoke a linked account.
func (c *Client) DisconnectAccount(ctx context.Context, accountID string) error {
	return c.postJSON(ctx, "/accounts/"+url.PathEscape(accountID)+"/disconnect", struct{}{}, nil)
}

// CreateScheduledPost registers a pending post with the backend scheduler.
func (c *Client) CreateScheduledPost(ctx context.Context, accountID, contentText string, scheduledTime time.Time) (string, error) {
	var decoded scheduledPostResponse
	req := scheduledPostRequest{
		AccountID:     accountID,
		ContentText:   contentText,
		ScheduledTime: scheduledTime.UTC().Format(time.RFC3339),
	}
	if err := c.postJSON(ctx, "/scheduled-posts", req, &decoded); err != nil {
		return "", err
	}
	return decoded.ID, nil
}

// CancelScheduledPost cancels a pending post on the backend.
func (c *Client) CancelScheduledPost(ctx context.Context, postID string) error {
	return c.postJSON(ctx, "/scheduled-posts/"+url.PathEscape(postID)+"/cancel", struct{}{}, nil)
}

// RetryScheduledPost asks the backend to re-attempt a failed post.
func (c *Client) RetryScheduledPost(ctx context.Context, postID string) (*PublishReceipt, error) {
	var decoded PublishReceipt
	if err := c.postJSON(ctx, "/scheduled-posts/"+url.PathEscape(postID)+"/retry", struct{}{}, &decoded); err != nil {
		return nil, err
	}
	return &decoded, nil
}

// DirectPost publishes content immediately through a linked account.
func (c *Client) DirectPost(ctx context.Context, platform domain.Platform, content string, mediaURLs []string) (*PublishReceipt, error) {
	var decoded PublishReceipt
	req := directPostRequest{Platform: string(platform), Content: content, MediaURLs: mediaURLs}
	if err := c.postJSON(ctx, "/posts/direct-post", req, &decoded); err != nil {
		return nil, err
	}
	return &decoded, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
	return req, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("backend: encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend: read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil {
			apiErr.Message = detail.Error
			if apiErr.Message == "" {
				apiErr.Message = detail.Message
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		c.logger.Debug().
			Int("status", resp.StatusCode).
			Str("path", req.URL.Path).
			Msg("backend: request rejected")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("backend: decode response: %w", err)
	}
	return nil
}

func uploadFromResponse(resp extractResponse, kind domain.SourceKind) *domain.ContentUpload {
	return &domain.ContentUpload{
		ID:               resp.ID,
		SourceKind:       kind,
		OriginalFilename: resp.OriginalFilename,
		URL:              resp.URL,
		WordCount:        resp.WordCount,
		DetectedTopic:    resp.DetectedTopic,
		Status:           "processed",
		ProcessedAt:      parseTime(resp.ProcessedAt),
	}
}
