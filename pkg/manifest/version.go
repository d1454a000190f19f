package manifest

import "regexp"

// versionRE matches the PEP 440 version subset seen in real manifests:
// release segments, optional epoch, pre/post/dev suffixes, and an optional
// local version label. Wildcard pins like "2.*" are also accepted since
// pip allows them with == and !=.
var versionRE = regexp.MustCompile(`(?i)^` +
	`(\d+!)?` + // epoch
	`\d+(\.\d+)*` + // release
	`(\.\*)?` + // wildcard suffix
	`([-._]?(a|alpha|b|beta|rc|c|pre|preview)[-._]?\d*)?` + // pre-release
	`([-._]?(post|rev|r)[-._]?\d*)?` + // post-release
	`([-._]?dev\d*)?` + // dev release
	`(\+[a-z0-9]+([-._][a-z0-9]+)*)?` + // local version
	`$`)

// ValidVersion reports whether v is a syntactically valid version string
// (PEP 440 subset).
func ValidVersion(v string) bool {
	return versionRE.MatchString(v)
}

// ValidName reports whether name is a syntactically valid package name
// (PEP 508: alphanumeric with interior dots, hyphens, underscores).
func ValidName(name string) bool {
	m := nameRE.FindString(name)
	return m == name && name != ""
}
