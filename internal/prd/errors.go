package prd

import "errors"

// ErrInvalidRequest is the only error Optimize surfaces to its caller: the
// conversation is too short to compact. Everything else degrades in place.
var ErrInvalidRequest = errors.New("conversation must contain more than one message")

// Kind classifies contained pipeline failures for logs and metrics. These
// never propagate out of the pipeline; a failed sub-step yields a smaller or
// unchanged PRD instead of an error.
type Kind string

const (
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindMalformedUpstream   Kind = "malformed_upstream_response"
	KindStorageUnavailable  Kind = "storage_unavailable"
)
