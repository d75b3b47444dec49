package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SocialProvider identifies a third-party identity provider used for federated login
type SocialProvider string

const (
	ProviderFacebook SocialProvider = "facebook"
	ProviderGoogle   SocialProvider = "google"
	ProviderGitHub   SocialProvider = "github"
	ProviderLinkedIn SocialProvider = "linkedin"
)

// SocialProviders lists every supported provider in display order
var SocialProviders = []SocialProvider{
	ProviderGoogle,
	ProviderFacebook,
	ProviderGitHub,
	ProviderLinkedIn,
}

// String returns the canonical identifier sent to the API as the providerId
func (p SocialProvider) String() string {
	return string(p)
}

// DisplayName returns a human friendly name for the provider
func (p SocialProvider) DisplayName() string {
	switch p {
	case ProviderFacebook:
		return "Facebook"
	case ProviderGoogle:
		return "Google"
	case ProviderGitHub:
		return "GitHub"
	case ProviderLinkedIn:
		return "LinkedIn"
	default:
		return string(p)
	}
}

// IsValid reports whether p is one of the supported providers
func (p SocialProvider) IsValid() bool {
	for _, known := range SocialProviders {
		if p == known {
			return true
		}
	}
	return false
}

// ParseSocialProvider resolves a provider by name, ignoring case and surrounding whitespace.  When the name is not
// recognised the returned error suggests the closest known provider, if any.
func ParseSocialProvider(name string) (SocialProvider, error) {
	candidate := SocialProvider(strings.ToLower(strings.TrimSpace(name)))
	if candidate.IsValid() {
		return candidate, nil
	}

	if matches := MatchProviders(name); len(matches) > 0 {
		return "", fmt.Errorf("unknown social provider %q, did you mean %q?", name, matches[0])
	}
	return "", fmt.Errorf("unknown social provider %q", name)
}

// MatchProviders returns the providers whose display name fuzzily matches the query, best match first.
// An empty query matches every provider.
func MatchProviders(query string) []SocialProvider {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]SocialProvider{}, SocialProviders...)
	}

	names := make([]string, len(SocialProviders))
	for i, p := range SocialProviders {
		names[i] = p.DisplayName()
	}

	ranks := fuzzy.RankFindFold(query, names)
	sort.Stable(ranks)

	best := make([]SocialProvider, 0, len(ranks))
	for _, r := range ranks {
		best = append(best, SocialProviders[r.OriginalIndex])
	}
	return best
}
