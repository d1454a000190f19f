package manifest

import "fmt"

// Severity ranks validation issues.
type Severity int

const (
	// SeverityNotice marks lines that are legal but skipped by TuneGAN
	// (options, URL requirements).
	SeverityNotice Severity = iota
	// SeverityWarning marks lines that parse but look suspicious.
	SeverityWarning
	// SeverityError marks lines that violate manifest well-formedness.
	SeverityError
)

// String returns a human-readable name for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityNotice:
		return "notice"
	case SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// IssueCode identifies a class of validation issue.
type IssueCode string

const (
	// IssueSyntax: the line is not a valid requirement, comment, or option.
	IssueSyntax IssueCode = "SYNTAX"
	// IssueDuplicate: the package name appears on an earlier line
	// (after PEP 503 normalization).
	IssueDuplicate IssueCode = "DUPLICATE"
	// IssueBadVersion: a version string is not syntactically valid.
	IssueBadVersion IssueCode = "BAD_VERSION"
	// IssueUnpinned: the requirement has no exact "==" pin (strict mode only).
	IssueUnpinned IssueCode = "UNPINNED"
	// IssueSkipped: the line is valid but ignored (options, URLs).
	IssueSkipped IssueCode = "SKIPPED"
)

// Issue is a single validation finding tied to a manifest line.
type Issue struct {
	Line     int       // 1-based line number
	Code     IssueCode // machine-readable issue class
	Severity Severity  // notice, warning, or error
	Message  string    // human-readable description
}

// String formats the issue as "line N: [severity] message".
func (i Issue) String() string {
	return fmt.Sprintf("line %d: [%s] %s", i.Line, i.Severity, i.Message)
}

// ValidateOptions controls validation behavior.
type ValidateOptions struct {
	// Strict additionally requires every requirement to carry an exact
	// "==" version pin. Unpinned requirements are reported as errors.
	Strict bool
}

// Validate checks the manifest's well-formedness:
//
//   - every non-blank, non-comment line is a requirement, option, or URL
//   - no duplicate package names after normalization
//   - all version strings are syntactically valid
//   - with Strict, every requirement is pinned with "=="
//
// Issues are returned in line order. An empty result means the manifest
// is well-formed.
func (m *Manifest) Validate(opts ValidateOptions) []Issue {
	var issues []Issue
	seen := make(map[string]int) // normalized name -> first line number

	for i := range m.Lines {
		line := &m.Lines[i]
		switch line.Kind {
		case LineBlank, LineComment:
			continue

		case LineInvalid:
			issues = append(issues, Issue{
				Line:     line.Number,
				Code:     IssueSyntax,
				Severity: SeverityError,
				Message:  fmt.Sprintf("cannot parse %q as a requirement", line.Raw),
			})

		case LineOption:
			issues = append(issues, Issue{
				Line:     line.Number,
				Code:     IssueSkipped,
				Severity: SeverityNotice,
				Message:  "installer option line is ignored",
			})

		case LineURL:
			issues = append(issues, Issue{
				Line:     line.Number,
				Code:     IssueSkipped,
				Severity: SeverityNotice,
				Message:  "URL requirement is ignored",
			})

		case LineRequirement:
			issues = append(issues, m.validateRequirement(line, seen, opts)...)
		}
	}
	return issues
}

func (m *Manifest) validateRequirement(line *Line, seen map[string]int, opts ValidateOptions) []Issue {
	var issues []Issue
	req := line.Req

	if first, dup := seen[req.Normalized]; dup {
		issues = append(issues, Issue{
			Line:     line.Number,
			Code:     IssueDuplicate,
			Severity: SeverityError,
			Message:  fmt.Sprintf("duplicate package %q (first listed on line %d)", req.Normalized, first),
		})
	} else {
		seen[req.Normalized] = line.Number
	}

	for _, spec := range req.Specifiers {
		if !ValidVersion(spec.Version) {
			issues = append(issues, Issue{
				Line:     line.Number,
				Code:     IssueBadVersion,
				Severity: SeverityError,
				Message:  fmt.Sprintf("invalid version %q for package %q", spec.Version, req.Name),
			})
		}
	}

	if opts.Strict && !req.Pinned() {
		issues = append(issues, Issue{
			Line:     line.Number,
			Code:     IssueUnpinned,
			Severity: SeverityError,
			Message:  fmt.Sprintf("package %q is not pinned with ==", req.Name),
		})
	}
	return issues
}

// WellFormed reports whether validation finds no error-severity issues.
func (m *Manifest) WellFormed() bool {
	for _, issue := range m.Validate(ValidateOptions{}) {
		if issue.Severity == SeverityError {
			return false
		}
	}
	return true
}
