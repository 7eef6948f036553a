package identity

import "time"

// ResolutionMethod indicates how an identity was resolved
type ResolutionMethod string

const (
	MethodPLC ResolutionMethod = "plc"
	MethodWeb ResolutionMethod = "web"
)

// Identity represents a DID with the handle it currently claims
type Identity struct {
	DID        string           // Decentralized Identifier (e.g., "did:plc:abc123")
	Handle     string           // Human-readable handle (e.g., "alice.bsky.social"), empty if not verified
	PDSURL     string           // Personal Data Server URL
	ResolvedAt time.Time        // When this identity was resolved
	Method     ResolutionMethod // DID method used to resolve it
}

// ResolutionStatus is the outcome class of a handle resolution
type ResolutionStatus int

const (
	StatusResolved   ResolutionStatus = iota // Handle found and verified
	StatusUnresolved                         // DID has no usable handle
	StatusFailed                             // Transport or input error
)

func (s ResolutionStatus) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusUnresolved:
		return "unresolved"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resolution is the explicit result of resolving a DID to its handle.
// Handle is set only for StatusResolved, Err only for StatusFailed.
type Resolution struct {
	Handle string
	Status ResolutionStatus
	Err    error
}

// Resolved builds a successful resolution
func Resolved(handle string) Resolution {
	return Resolution{Handle: handle, Status: StatusResolved}
}

// Unresolved builds a resolution for a DID that has no usable handle
func Unresolved() Resolution {
	return Resolution{Status: StatusUnresolved}
}

// Failed builds a resolution for a lookup that could not complete
func Failed(err error) Resolution {
	return Resolution{Status: StatusFailed, Err: err}
}
