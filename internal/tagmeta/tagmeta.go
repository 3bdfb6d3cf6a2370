// Package tagmeta encodes and decodes classification metadata carried in
// free-text product tags. The shop platform has no first-party metadata
// field, so code, confidence and review status ride along as reserved-prefix
// tags. Raw tag strings stop at this boundary; everything downstream works
// with the decoded Metadata struct.
package tagmeta

import (
	"strconv"
	"strings"
)

// Reserved tag prefixes. Any tag starting with one of these belongs to the
// metadata namespace and is stripped on re-encode.
const (
	CodePrefix       = "code_"
	ConfidencePrefix = "confidence_"
	StatusPrefix     = "status_"
)

// Status is the review state of a classification.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusModified Status = "modified"
)

// Metadata is the decoded classification state of one product.
// Nil pointer fields mean the corresponding tag was absent.
type Metadata struct {
	Code       *string
	Confidence *int
	Status     Status // empty means no status tag present
}

// EffectiveStatus returns the status used for filtering: a product with no
// status tag counts as pending.
func (m Metadata) EffectiveStatus() Status {
	if m.Status == "" {
		return StatusPending
	}
	return m.Status
}

// Normalize converts the transport representation of tags (a single
// comma-joined string or an already-split list) into a trimmed slice.
// Empty segments are dropped.
func Normalize(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Join renders a tag slice back to the comma-joined transport form.
func Join(tags []string) string {
	return strings.Join(tags, ", ")
}

// Decode extracts metadata from a tag sequence. Tags are processed in order
// and the last tag for a given prefix wins, so duplicate garbage input
// decodes deterministically. A confidence tag that does not parse as an
// integer is ignored.
func Decode(tags []string) Metadata {
	var md Metadata
	for _, tag := range tags {
		switch {
		case strings.HasPrefix(tag, CodePrefix):
			code := strings.TrimPrefix(tag, CodePrefix)
			md.Code = &code
		case strings.HasPrefix(tag, ConfidencePrefix):
			if n, err := strconv.Atoi(strings.TrimPrefix(tag, ConfidencePrefix)); err == nil {
				md.Confidence = &n
			}
		case strings.HasPrefix(tag, StatusPrefix):
			md.Status = Status(strings.TrimPrefix(tag, StatusPrefix))
		}
	}
	return md
}

// Encode rewrites a tag sequence with new metadata. Every tag in the
// reserved namespace is removed, the remaining tags keep their relative
// order, and present metadata fields are appended at the end in fixed order:
// code, confidence, status. Re-encoding is idempotent:
// Encode(Encode(T, M1), M2) == Encode(T, M2).
func Encode(tags []string, md Metadata) []string {
	out := make([]string, 0, len(tags)+3)
	for _, tag := range tags {
		if isReserved(tag) {
			continue
		}
		out = append(out, tag)
	}
	if md.Code != nil {
		out = append(out, CodePrefix+*md.Code)
	}
	if md.Confidence != nil {
		out = append(out, ConfidencePrefix+strconv.Itoa(*md.Confidence))
	}
	if md.Status != "" {
		out = append(out, StatusPrefix+string(md.Status))
	}
	return out
}

func isReserved(tag string) bool {
	return strings.HasPrefix(tag, CodePrefix) ||
		strings.HasPrefix(tag, ConfidencePrefix) ||
		strings.HasPrefix(tag, StatusPrefix)
}

// Matches reports whether decoded metadata passes a named status filter.
// Filter semantics: "pending" matches when no status tag exists or the
// status is pending; "approved" and "modified" require an exact match;
// anything else (including empty) matches everything.
func Matches(md Metadata, filter string) bool {
	switch Status(filter) {
	case StatusPending:
		return md.EffectiveStatus() == StatusPending
	case StatusApproved:
		return md.Status == StatusApproved
	case StatusModified:
		return md.Status == StatusModified
	default:
		return true
	}
}
