package domain

import "strings"

// FilterContacts applies the list-view predicate: case-insensitive substring
// match on name OR company, AND exact status match (StatusAll = wildcard).
// Input order is preserved; the input slice is never mutated.
func FilterContacts(contacts []ContactWithDetails, query string, status ContactStatus) []ContactWithDetails {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" && (status == StatusAll || status == "") {
		return contacts
	}

	out := make([]ContactWithDetails, 0, len(contacts))
	for _, c := range contacts {
		if status != StatusAll && status != "" && c.Status != status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(c.Name), query) &&
			!strings.Contains(strings.ToLower(c.Company), query) {
			continue
		}
		out = append(out, c)
	}
	return out
}
