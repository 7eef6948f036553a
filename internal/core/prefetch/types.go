package prefetch

import "maps"

// PageStatus is the load status reported with a navigation event
type PageStatus string

const (
	StatusLoading  PageStatus = "loading"
	StatusComplete PageStatus = "complete"
)

// NavigationEvent is a tab status change delivered by the event source
type NavigationEvent struct {
	TabID  int        `json:"tabId"`
	Status PageStatus `json:"status"`
	URL    string     `json:"url"`
}

// Extraction is what an Extractor found in a URL.
// DID is the identifier to pre-resolve; Handle is set when the page
// context already names the handle.
type Extraction struct {
	DID    string
	Handle string
}

// Mapping is the persisted DID -> handle cache
type Mapping map[string]string

// Clone returns a copy that can be modified without affecting m.
// Cloning a nil mapping returns an empty, non-nil mapping.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m)+1)
	maps.Copy(out, m)
	return out
}

// Outcome records how a navigation event was handled
type Outcome string

const (
	OutcomeDisabled         Outcome = "disabled"
	OutcomeIgnoredStatus    Outcome = "ignored_status"
	OutcomeNoIdentifier     Outcome = "no_identifier"
	OutcomeHandleKnown      Outcome = "handle_known"
	OutcomeStoreReadFailed  Outcome = "store_read_failed"
	OutcomeCacheHit         Outcome = "cache_hit"
	OutcomeUnresolved       Outcome = "unresolved"
	OutcomeResolveFailed    Outcome = "resolve_failed"
	OutcomeStoreWriteFailed Outcome = "store_write_failed"
	OutcomeResolved         Outcome = "resolved"
	OutcomePanicked         Outcome = "panicked"
)
