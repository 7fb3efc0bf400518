// Package matching decides whether a worker's free-text skill satisfies a job
// request's free-text required skill. Both strings come straight from user
// input, so the matcher normalizes defensively and never errors.
package matching

import "strings"

// Matcher evaluates skill strings against a category table. The zero value is
// not usable; construct with NewMatcher.
type Matcher struct {
	categories Categories
}

// NewMatcher returns a matcher bound to the given category table. A nil table
// falls back to the built-in one.
func NewMatcher(cats Categories) *Matcher {
	if cats == nil {
		cats = DefaultCategories()
	}
	return &Matcher{categories: cats}
}

// Matches reports whether workerSkill satisfies requiredSkill.
//
// Rules, first hit wins:
//  1. empty/whitespace requirement matches anything
//  2. empty worker skill matches nothing
//  3. case-insensitive exact match
//  4. substring containment in either direction
//  5. both strings hit a fragment of the same category bucket
func (m *Matcher) Matches(workerSkill, requiredSkill string) bool {
	required := strings.ToLower(strings.TrimSpace(requiredSkill))
	if required == "" {
		return true
	}
	worker := strings.ToLower(strings.TrimSpace(workerSkill))
	if worker == "" {
		return false
	}

	if worker == required {
		return true
	}
	if strings.Contains(worker, required) || strings.Contains(required, worker) {
		return true
	}

	for _, fragments := range m.categories {
		if containsAny(worker, fragments) && containsAny(required, fragments) {
			return true
		}
	}
	return false
}

var defaultMatcher = NewMatcher(nil)

// Matches runs the default matcher. Convenience for callers that do not carry
// a custom category table.
func Matches(workerSkill, requiredSkill string) bool {
	return defaultMatcher.Matches(workerSkill, requiredSkill)
}

// SetDefaultCategories replaces the table behind the package-level Matches.
// Intended for startup wiring, before any matching runs.
func SetDefaultCategories(cats Categories) {
	defaultMatcher = NewMatcher(cats)
}
