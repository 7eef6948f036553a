package prefetch

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/bluesky-social/indigo/atproto/syntax"
)

// DefaultExtractorHosts are the web app hosts whose profile URLs are recognised
var DefaultExtractorHosts = []string{"bsky.app", "staging.bsky.app", "main.bsky.dev"}

// profilePathPattern matches /profile/{actor} with an optional trailing path
var profilePathPattern = regexp.MustCompile(`^/profile/([^/]+)(?:/.*)?$`)

// maxActorLength bounds the actor segment (did:web can be long, handles are at most 253)
const maxActorLength = 2048

// URLExtractor finds DIDs in web app profile URLs and at:// URIs
type URLExtractor struct {
	hosts map[string]struct{}
}

// NewURLExtractor creates an extractor for the given hosts.
// An empty list falls back to DefaultExtractorHosts.
func NewURLExtractor(hosts []string) *URLExtractor {
	if len(hosts) == 0 {
		hosts = DefaultExtractorHosts
	}
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			set[h] = struct{}{}
		}
	}
	return &URLExtractor{hosts: set}
}

// Extract returns the DID named by rawURL, or the handle when the URL names
// the actor by handle instead.
//
// Examples:
//
//	https://bsky.app/profile/did:plc:abc/post/3k2j -> {DID: "did:plc:abc"}
//	https://bsky.app/profile/alice.example          -> {Handle: "alice.example"}
//	at://did:plc:abc/app.bsky.feed.post/3k2j        -> {DID: "did:plc:abc"}
func (e *URLExtractor) Extract(rawURL string) (Extraction, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Extraction{}, false
	}

	if strings.HasPrefix(rawURL, "at://") {
		return extractATURI(rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Extraction{}, false
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return Extraction{}, false
	}
	if _, ok := e.hosts[strings.ToLower(u.Hostname())]; !ok {
		return Extraction{}, false
	}

	matches := profilePathPattern.FindStringSubmatch(u.Path)
	if matches == nil {
		return Extraction{}, false
	}

	return classifyActor(matches[1])
}

// extractATURI pulls the authority out of an at:// URI
func extractATURI(rawURI string) (Extraction, bool) {
	uri, err := syntax.ParseATURI(rawURI)
	if err != nil {
		return Extraction{}, false
	}
	return classifyActor(uri.Authority().String())
}

// classifyActor decides whether an actor segment is a DID or a handle
func classifyActor(actor string) (Extraction, bool) {
	if actor == "" || len(actor) > maxActorLength {
		return Extraction{}, false
	}

	if strings.HasPrefix(actor, "did:") {
		did, err := syntax.ParseDID(actor)
		if err != nil {
			return Extraction{}, false
		}
		return Extraction{DID: did.String()}, true
	}

	handle, err := syntax.ParseHandle(actor)
	if err != nil {
		return Extraction{}, false
	}
	return Extraction{Handle: handle.Normalize().String()}, true
}
