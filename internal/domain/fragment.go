package domain

import "strings"

// Fragment is one platform's slice of a generation result. The set of
// implementations is closed: each platform has exactly one variant with its
// own required fields.
type Fragment interface {
	Platform() Platform
	// Body returns the primary text of the fragment, the piece that gets
	// published or previewed.
	Body() string
}

// LinkedInPost is the linkedin variant.
type LinkedInPost struct {
	Text     string
	Hashtags []string
}

func (LinkedInPost) Platform() Platform { return PlatformLinkedIn }
func (f LinkedInPost) Body() string     { return f.Text }

// TwitterThread is the twitter variant: an ordered list of tweets.
type TwitterThread struct {
	Tweets []string
}

func (TwitterThread) Platform() Platform { return PlatformTwitter }
func (f TwitterThread) Body() string     { return strings.Join(f.Tweets, "\n\n") }

// YouTubeScript is the youtube variant.
type YouTubeScript struct {
	Title       string
	Script      string
	Description string
}

func (YouTubeScript) Platform() Platform { return PlatformYouTube }
func (f YouTubeScript) Body() string     { return f.Script }

// BlogArticle is the blog variant.
type BlogArticle struct {
	Title     string
	HTML      string
	WordCount int
}

func (BlogArticle) Platform() Platform { return PlatformBlog }
func (f BlogArticle) Body() string     { return f.HTML }

// EmailNewsletter is the email variant.
type EmailNewsletter struct {
	Subject string
	Text    string
}

func (EmailNewsletter) Platform() Platform { return PlatformEmail }
func (f EmailNewsletter) Body() string     { return f.Text }

// ResultSet accumulates fragments as they arrive from poll responses. A
// fragment appears at most once per platform; merging is a total
// replace-by-key, so re-applying the same response is idempotent.
type ResultSet struct {
	fragments map[Platform]Fragment
}

// NewResultSet returns an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{fragments: make(map[Platform]Fragment)}
}

// Merge replaces the fragment stored for each incoming fragment's platform.
// It reports whether anything was applied.
func (r *ResultSet) Merge(fragments ...Fragment) bool {
	applied := false
	for _, f := range fragments {
		if f == nil {
			continue
		}
		r.fragments[f.Platform()] = f
		applied = true
	}
	return applied
}

// Fragment returns the stored fragment for a platform, if any.
func (r *ResultSet) Fragment(p Platform) (Fragment, bool) {
	f, ok := r.fragments[p]
	return f, ok
}

// Len returns the number of platforms with a fragment.
func (r *ResultSet) Len() int { return len(r.fragments) }

// Snapshot returns the fragments in stable platform order. The returned slice
// is detached from the set.
func (r *ResultSet) Snapshot() []Fragment {
	out := make([]Fragment, 0, len(r.fragments))
	for _, p := range Platforms() {
		if f, ok := r.fragments[p]; ok {
			out = append(out, f)
		}
	}
	return out
}
