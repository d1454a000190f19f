package pypi

import (
	"context"
	"errors"

	"github.com/adityaaj2003/tunegan/pkg/manifest"
	"github.com/adityaaj2003/tunegan/pkg/registry"
)

// AuditStatus classifies the outcome of auditing one manifest entry.
type AuditStatus int

const (
	// AuditOK: the package exists and any exact pin matches a published release.
	AuditOK AuditStatus = iota
	// AuditPackageNotFound: the package name is unknown to the registry.
	AuditPackageNotFound
	// AuditUnknownVersion: the package exists but the pinned version was
	// never published.
	AuditUnknownVersion
	// AuditFetchFailed: the registry could not be queried.
	AuditFetchFailed
)

// String returns a human-readable name for the status.
func (s AuditStatus) String() string {
	switch s {
	case AuditOK:
		return "ok"
	case AuditPackageNotFound:
		return "package not found"
	case AuditUnknownVersion:
		return "unknown version"
	default:
		return "fetch failed"
	}
}

// AuditResult is the outcome for a single requirement.
type AuditResult struct {
	Line    int         // manifest line number
	Package string      // normalized package name
	Pin     string      // exact pinned version, empty if unpinned
	Status  AuditStatus // audit outcome
	Latest  string      // latest published version, when known
	Err     error       // underlying error for AuditFetchFailed
}

// Audit verifies every requirement in m against the registry: the package
// must exist, and any exact "==" pin must match a published release.
// Unpinned or range-constrained requirements are only checked for
// existence. Results are returned in manifest order.
func (c *Client) Audit(ctx context.Context, m *manifest.Manifest, refresh bool) []AuditResult {
	var results []AuditResult
	for i := range m.Lines {
		line := &m.Lines[i]
		if line.Kind != manifest.LineRequirement {
			continue
		}
		results = append(results, c.auditOne(ctx, line, refresh))
	}
	return results
}

func (c *Client) auditOne(ctx context.Context, line *manifest.Line, refresh bool) AuditResult {
	req := line.Req
	result := AuditResult{
		Line:    line.Number,
		Package: req.Normalized,
	}
	for _, spec := range req.Specifiers {
		if spec.Op == "==" {
			result.Pin = spec.Version
			break
		}
	}

	info, err := c.FetchPackage(ctx, req.Normalized, refresh)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			result.Status = AuditPackageNotFound
		} else {
			result.Status = AuditFetchFailed
			result.Err = err
		}
		return result
	}

	result.Latest = info.Version
	if result.Pin != "" && !info.HasRelease(result.Pin) {
		result.Status = AuditUnknownVersion
		return result
	}
	result.Status = AuditOK
	return result
}
