package backend

import (
	"encoding/json"
	"strings"
	"time"

	"socialflow/internal/domain"
)

type extractResponse struct {
	ID               string `json:"id"`
	FileType         string `json:"file_type"`
	OriginalFilename string `json:"original_filename"`
	URL              string `json:"url"`
	WordCount        int    `json:"word_count"`
	DetectedTopic    string `json:"detected_topic"`
	ProcessedAt      string `json:"processed_at"`
}

type generateRequest struct {
	ContentID string   `json:"content_id"`
	Platforms []string `json:"platforms"`
	Locale    string   `json:"locale,omitempty"`
}

type taskAccepted struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type imageTaskRequest struct {
	ContentID string `json:"content_id"`
	Prompt    string `json:"prompt,omitempty"`
}

type jobStatusResponse struct {
	TaskID  string          `json:"task_id"`
	Status  string          `json:"status"`
	Result  json.RawMessage `json:"result"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type jobResult struct {
	ContentJSON map[string]json.RawMessage `json:"content_json"`
	Images      []imagePayload             `json:"images"`
}

type imagePayload struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

type linkedinPayload struct {
	PostText string   `json:"post_text"`
	Hashtags []string `json:"hashtags"`
}

type youtubePayload struct {
	Title       string `json:"title"`
	Script      string `json:"script"`
	Description string `json:"description"`
}

type blogPayload struct {
	Title     string `json:"title"`
	HTML      string `json:"html"`
	WordCount int    `json:"word_count"`
}

type emailPayload struct {
	Subject   string `json:"subject"`
	PlainText string `json:"plain_text"`
	HTMLBody  string `json:"html_body"`
}

type initiateOAuthRequest struct {
	Platform string `json:"platform"`
}

// OAuthInitiation is the backend's answer to initiate-oauth: where to send
// the user agent, and the state value the provider will echo back.
type OAuthInitiation struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
	Platform         string `json:"platform"`
}

type connectRequest struct {
	Platform string `json:"platform"`
	Code     string `json:"code"`
	State    string `json:"state"`
}

type connectResponse struct {
	Message string         `json:"message"`
	Account accountPayload `json:"account"`
}

type accountPayload struct {
	ID             string `json:"id"`
	Platform       string `json:"platform"`
	AccountName    string `json:"account_name"`
	AccountHandle  string `json:"account_handle"`
	IsActive       bool   `json:"is_active"`
	TokenExpiresAt string `json:"token_expires_at"`
	ConnectedAt    string `json:"connected_at"`
}

type scheduledPostRequest struct {
	AccountID     string `json:"account_id"`
	ContentText   string `json:"content_text"`
	ScheduledTime string `json:"scheduled_time"`
}

type scheduledPostResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type directPostRequest struct {
	Platform  string   `json:"platform"`
	Content   string   `json:"content"`
	MediaURLs []string `json:"media_urls,omitempty"`
}

// PublishReceipt is the backend's acknowledgement of a direct post.
type PublishReceipt struct {
	PostID  string `json:"post_id"`
	PostURL string `json:"post_url"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JobSnapshot is the decoded state of one poll response.
type JobSnapshot struct {
	TaskID      string
	Status      domain.JobStatus
	ErrorDetail string
	Fragments   []domain.Fragment
	Images      []domain.ImageAsset
}

func mapJobStatus(raw string) domain.JobStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "queued":
		return domain.JobStatusPending
	case "completed", "success":
		return domain.JobStatusCompleted
	case "failed", "failure":
		return domain.JobStatusFailed
	default:
		// processing, running, and anything newer the backend reports
		// mid-flight keeps the poller going.
		return domain.JobStatusRunning
	}
}

// decodeFragments maps recognized content_json keys onto fragment variants.
// Unrecognized keys are skipped; a later backend may emit more than we know.
func decodeFragments(content map[string]json.RawMessage) []domain.Fragment {
	if len(content) == 0 {
		return nil
	}
	var out []domain.Fragment
	for key, raw := range content {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		switch key {
		case "linkedin":
			var p linkedinPayload
			if err := json.Unmarshal(raw, &p); err == nil && p.PostText != "" {
				out = append(out, domain.LinkedInPost{Text: p.PostText, Hashtags: p.Hashtags})
			}
		case "x_thread", "twitter_thread":
			var tweets []string
			if err := json.Unmarshal(raw, &tweets); err == nil && len(tweets) > 0 {
				out = append(out, domain.TwitterThread{Tweets: tweets})
			}
		case "youtube":
			var p youtubePayload
			if err := json.Unmarshal(raw, &p); err == nil && p.Script != "" {
				out = append(out, domain.YouTubeScript{Title: p.Title, Script: p.Script, Description: p.Description})
			}
		case "long_blog", "blog":
			var p blogPayload
			if err := json.Unmarshal(raw, &p); err == nil && p.HTML != "" {
				out = append(out, domain.BlogArticle{Title: p.Title, HTML: p.HTML, WordCount: p.WordCount})
			}
		case "email_newsletter", "email":
			var p emailPayload
			if err := json.Unmarshal(raw, &p); err == nil {
				text := p.PlainText
				if text == "" {
					text = p.HTMLBody
				}
				if text != "" {
					out = append(out, domain.EmailNewsletter{Subject: p.Subject, Text: text})
				}
			}
		}
	}
	return out
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}
