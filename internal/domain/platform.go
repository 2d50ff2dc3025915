package domain

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Platform enumerates the content targets the generator and the social
// integrations understand.
type Platform string

const (
	PlatformLinkedIn Platform = "linkedin"
	PlatformTwitter  Platform = "twitter"
	PlatformYouTube  Platform = "youtube"
	PlatformBlog     Platform = "blog"
	PlatformEmail    Platform = "email"
)

// Platforms lists every supported platform in a stable order.
func Platforms() []Platform {
	return []Platform{PlatformLinkedIn, PlatformTwitter, PlatformYouTube, PlatformBlog, PlatformEmail}
}

// ParsePlatform validates a raw platform string.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	switch p {
	case PlatformLinkedIn, PlatformTwitter, PlatformYouTube, PlatformBlog, PlatformEmail:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// Linkable reports whether accounts can be connected for the platform. Blog
// and email content is exported rather than published through an account.
func (p Platform) Linkable() bool {
	switch p {
	case PlatformLinkedIn, PlatformTwitter, PlatformYouTube:
		return true
	}
	return false
}

// DisplayName returns a human-readable platform label.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformLinkedIn:
		return "LinkedIn"
	case PlatformYouTube:
		return "YouTube"
	case PlatformTwitter:
		return "Twitter/X"
	}
	return cases.Title(language.Und).String(string(p))
}
