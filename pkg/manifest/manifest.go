// Package manifest parses and validates pip-style requirements manifests.
//
// A manifest is an ordered sequence of lines, each either blank, a comment,
// an installer option (-r, -e, --index-url, ...), a URL requirement, or a
// package requirement of the form:
//
//	<name>[extras][<op><version>[,<op><version>...]]  [# comment]
//
// Parsing is lossless and permissive: every input line is preserved with
// its line number and classification, and malformed lines are recorded
// rather than aborting the parse. Well-formedness checking is a separate
// step, see [Manifest.Validate].
//
// # Usage
//
//	m, err := manifest.ParseFile("requirements.txt")
//	if err != nil {
//	    return err
//	}
//	issues := m.Validate(manifest.ValidateOptions{Strict: true})
//	for _, issue := range issues {
//	    fmt.Printf("%s:%d: %s\n", m.Path, issue.Line, issue.Message)
//	}
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// LineKind classifies a manifest line.
type LineKind int

const (
	// LineBlank is an empty or whitespace-only line.
	LineBlank LineKind = iota
	// LineComment is a line whose first non-blank character is '#'.
	LineComment
	// LineRequirement is a package requirement.
	LineRequirement
	// LineOption is an installer option line (-r, -e, -c, --index-url, ...).
	LineOption
	// LineURL is a direct URL or VCS requirement (https://..., git+...).
	LineURL
	// LineInvalid is a line that could not be parsed as any of the above.
	LineInvalid
)

// String returns a human-readable name for the line kind.
func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineComment:
		return "comment"
	case LineRequirement:
		return "requirement"
	case LineOption:
		return "option"
	case LineURL:
		return "url"
	default:
		return "invalid"
	}
}

// Specifier is a single version constraint, e.g. ">=2.28.0".
type Specifier struct {
	Op      string // one of ==, ===, >=, <=, ~=, !=, >, <
	Version string // version string as written
}

// String formats the specifier as written in a manifest.
func (s Specifier) String() string { return s.Op + s.Version }

// Requirement is a parsed package requirement line.
type Requirement struct {
	Name       string      // package name as written (e.g., "Django")
	Normalized string      // PEP 503 normalized name (e.g., "django")
	Extras     []string    // optional extras (e.g., ["socks"] for requests[socks])
	Specifiers []Specifier // version constraints, empty if unpinned
	Comment    string      // trailing comment text, without the leading '#'
}

// Pinned reports whether the requirement pins an exact version with "==".
func (r *Requirement) Pinned() bool {
	for _, s := range r.Specifiers {
		if s.Op == "==" || s.Op == "===" {
			return true
		}
	}
	return false
}

// Line is one line of a manifest, preserved losslessly.
type Line struct {
	Number int          // 1-based line number
	Raw    string       // original text, without trailing newline
	Kind   LineKind     // classification
	Req    *Requirement // set only when Kind == LineRequirement
}

// Manifest is a parsed requirements file.
type Manifest struct {
	Path  string // source path, empty when parsed from a reader
	Lines []Line // all lines in file order
}

// Requirements returns the requirement lines in file order.
func (m *Manifest) Requirements() []*Requirement {
	var reqs []*Requirement
	for i := range m.Lines {
		if m.Lines[i].Kind == LineRequirement {
			reqs = append(reqs, m.Lines[i].Req)
		}
	}
	return reqs
}

// nameRE matches a PEP 508 package name at the start of a requirement.
var nameRE = regexp.MustCompile(`^([A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?)`)

// extrasRE matches an extras group immediately after the name, e.g. "[socks,security]".
var extrasRE = regexp.MustCompile(`^\[([A-Za-z0-9._,\s-]*)\]`)

// specifier operators, longest first so "==" wins over "=" prefix scans.
var specifierOps = []string{"===", "==", "~=", "!=", ">=", "<=", ">", "<"}

// ParseFile parses the manifest at path.
func ParseFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}

// Parse reads a manifest from r. Parsing is permissive: malformed lines
// are classified as LineInvalid rather than causing an error. The only
// error source is the underlying reader.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		m.Lines = append(m.Lines, parseLine(lineNo, raw))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return m, nil
}

func parseLine(number int, raw string) Line {
	line := Line{Number: number, Raw: raw}
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "":
		line.Kind = LineBlank
		return line
	case strings.HasPrefix(trimmed, "#"):
		line.Kind = LineComment
		return line
	case strings.HasPrefix(trimmed, "-"):
		line.Kind = LineOption
		return line
	case strings.Contains(trimmed, "://") || strings.HasPrefix(trimmed, "git+"):
		line.Kind = LineURL
		return line
	}

	req, ok := parseRequirement(trimmed)
	if !ok {
		line.Kind = LineInvalid
		return line
	}
	line.Kind = LineRequirement
	line.Req = req
	return line
}

// parseRequirement parses a requirement string like "requests[socks]>=2.28.0  # http client".
func parseRequirement(s string) (*Requirement, bool) {
	req := &Requirement{}

	// Split off the trailing comment first so '#' inside it can't confuse
	// the specifier scan.
	if idx := strings.Index(s, "#"); idx >= 0 {
		req.Comment = strings.TrimSpace(s[idx+1:])
		s = strings.TrimSpace(s[:idx])
	}
	if s == "" {
		return nil, false
	}

	m := nameRE.FindString(s)
	if m == "" {
		return nil, false
	}
	req.Name = m
	req.Normalized = NormalizeName(m)
	rest := s[len(m):]

	if em := extrasRE.FindStringSubmatch(rest); em != nil {
		for _, e := range strings.Split(em[1], ",") {
			if e = strings.TrimSpace(e); e != "" {
				req.Extras = append(req.Extras, e)
			}
		}
		rest = rest[len(em[0]):]
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return req, true
	}

	// Environment markers (after ';') are accepted and ignored.
	if idx := strings.Index(rest, ";"); idx >= 0 {
		rest = strings.TrimSpace(rest[:idx])
		if rest == "" {
			return req, true
		}
	}

	for _, part := range strings.Split(rest, ",") {
		spec, ok := parseSpecifier(strings.TrimSpace(part))
		if !ok {
			return nil, false
		}
		req.Specifiers = append(req.Specifiers, spec)
	}
	return req, true
}

func parseSpecifier(s string) (Specifier, bool) {
	for _, op := range specifierOps {
		if strings.HasPrefix(s, op) {
			version := strings.TrimSpace(s[len(op):])
			if version == "" {
				return Specifier{}, false
			}
			return Specifier{Op: op, Version: version}, true
		}
	}
	return Specifier{}, false
}

// NormalizeName normalizes a package name per PEP 503: lowercase, with
// runs of '-', '_', and '.' collapsed to a single '-'.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	prevSep := false
	for _, c := range strings.ToLower(name) {
		if c == '-' || c == '_' || c == '.' {
			if !prevSep {
				b.WriteByte('-')
			}
			prevSep = true
			continue
		}
		prevSep = false
		b.WriteRune(c)
	}
	return b.String()
}
