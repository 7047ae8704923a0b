package domain

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AccountTypeHuman is the account type the tracker assigns to real people.
// App and customer accounts carry other tags and are never resolved.
const AccountTypeHuman = "atlassian"

// User is a tracker account as seen through group membership.
type User struct {
	AccountID   string
	DisplayName string
	Email       string
	AccountType string
	Active      bool
}

// IsAssignableHuman reports whether the user is an active human account.
func (u User) IsAssignableHuman() bool {
	return u.Active && u.AccountType == AccountTypeHuman
}

// MatchesDomain reports whether the user's e-mail ends with the given domain.
// Users without an e-mail address always match: the tracker hides addresses
// depending on profile visibility, so a blank value says nothing.
func (u User) MatchesDomain(domain string) bool {
	suffix := NormalizeDomain(domain)
	if suffix == "" || strings.TrimSpace(u.Email) == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(u.Email)), suffix)
}

// NormalizeDomain lower-cases a domain filter and prefixes it with "@".
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	if d == "" {
		return ""
	}
	if !strings.HasPrefix(d, "@") {
		d = "@" + d
	}
	return d
}

// NormalizeDisplayName title-cases every word of a display name. Hyphens
// separate words. Dotted tokens such as initials keep their dots, with
// single-letter segments upper-cased.
//
//	"jean-luc PICARD" -> "Jean-Luc Picard"
//	"j.r.r. tolkien"  -> "J.R.R. Tolkien"
func NormalizeDisplayName(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		parts := strings.Split(word, "-")
		for j, part := range parts {
			parts[j] = normalizeToken(part)
		}
		words[i] = strings.Join(parts, "-")
	}
	return strings.Join(words, " ")
}

func normalizeToken(token string) string {
	if !strings.Contains(token, ".") {
		return titleSegment(token)
	}
	segments := strings.Split(token, ".")
	for i, seg := range segments {
		if utf8.RuneCountInString(seg) == 1 {
			segments[i] = strings.ToUpper(seg)
			continue
		}
		segments[i] = titleSegment(seg)
	}
	return strings.Join(segments, ".")
}

func titleSegment(seg string) string {
	if seg == "" {
		return seg
	}
	// Casers are stateful, so one is built per call.
	return cases.Title(language.Und).String(seg)
}

// SortUsers orders users by lower-cased display name, then account id.
func SortUsers(users []User) {
	sort.SliceStable(users, func(i, j int) bool {
		a, b := strings.ToLower(users[i].DisplayName), strings.ToLower(users[j].DisplayName)
		if a != b {
			return a < b
		}
		return users[i].AccountID < users[j].AccountID
	})
}

// AccountIDs returns the account ids of the given users in order.
func AccountIDs(users []User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.AccountID)
	}
	return ids
}
