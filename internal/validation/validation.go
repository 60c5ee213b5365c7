// Package validation holds the server-side field checks the wizard applies
// on submission. Browser-side checks are not trusted: browsers disagree on
// email validity, so everything is re-checked here.
package validation

import (
	"net/mail"
	"regexp"
	"strings"
)

const (
	// DomainMinLen and DomainMaxLen bound the label before ".gov.uk".
	DomainMinLen = 3
	DomainMaxLen = 63

	govSuffix = ".gov.uk"
)

var (
	// domainPattern rejects leading/trailing hyphens and consecutive
	// hyphens within the label.
	domainPattern = regexp.MustCompile(`^[a-z0-9](-?[a-z0-9])*$`)

	// phonePattern accepts UK numbers: a leading zero then 9 or 10
	// digits, with spaces allowed anywhere.
	phonePattern = regexp.MustCompile(`^\s*0(?:\s*\d){9,10}\s*$`)
)

// NormalizeDomain strips an optional ".gov.uk" suffix and lowercases the
// remaining label. Normalization happens before validation so that mixed
// case input is accepted and stored canonically; it is idempotent.
func NormalizeDomain(input string) string {
	name := strings.ToLower(strings.TrimSpace(input))
	name = strings.TrimSuffix(name, govSuffix)
	return name
}

// ValidDomainLabel reports whether a normalized label is an acceptable
// .gov.uk name: 3 to 63 characters matching the label pattern.
func ValidDomainLabel(label string) bool {
	if len(label) < DomainMinLen || len(label) > DomainMaxLen {
		return false
	}
	return domainPattern.MatchString(label)
}

// FullDomain returns the stored form of a normalized label.
func FullDomain(label string) string {
	return label + govSuffix
}

// ValidPhone reports whether the input looks like a UK telephone number.
func ValidPhone(input string) bool {
	return phonePattern.MatchString(input)
}

// ValidEmail applies an RFC-plausibility check plus a dotted-domain rule:
// the part after the final dot must be at least two characters, so
// addresses like a@b.c fail the way real mail systems would.
func ValidEmail(input string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(input))
	if err != nil || addr.Address != strings.TrimSpace(input) {
		return false
	}
	at := strings.LastIndex(addr.Address, "@")
	domain := addr.Address[at+1:]
	dot := strings.LastIndex(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return false
	}
	return len(domain)-dot-1 >= 2
}
