package matching

import (
	"encoding/json"
	"io"
	"strings"
)

// Categories maps a category name to its keyword fragments. Fragments are
// deliberately partial word-stems ("carpent", "electr") so that inflections
// like "carpenter" or "electrical wiring" still land in the bucket.
type Categories map[string][]string

// DefaultCategories returns the built-in category table covering the common
// informal-labour trades seen in worker profiles and job requests.
func DefaultCategories() Categories {
	return Categories{
		"agriculture":   {"farm", "agricultur", "harvest", "crop", "livestock", "dairy", "poultry"},
		"construction":  {"build", "construct", "carpent", "masonry", "mason", "plumb", "electr", "paint", "weld"},
		"hospitality":   {"hotel", "restaurant", "cook", "chef", "cater", "waiter", "waitr", "kitchen", "housekeep"},
		"cleaning":      {"clean", "janitor", "sweep", "laundry", "washing"},
		"healthcare":    {"nurse", "nursing", "care", "medical", "health", "attendant"},
		"manufacturing": {"factory", "manufactur", "assembl", "machine", "production", "packag"},
		"driving":       {"driver", "driving", "transport", "delivery", "rider", "chauffeur"},
		"retail":        {"shop", "retail", "sales", "store", "cashier", "vendor"},
		"general":       {"helper", "labour", "labor", "general", "loading", "porter"},
	}
}

// LoadCategories reads a JSON object of the form {"category": ["frag", ...]}
// so deployments can extend the buckets without a code change. Fragments are
// lowercased on load; categories with no fragments are dropped.
func LoadCategories(r io.Reader) (Categories, error) {
	var raw map[string][]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	cats := make(Categories, len(raw))
	for name, frags := range raw {
		kept := make([]string, 0, len(frags))
		for _, f := range frags {
			f = strings.ToLower(strings.TrimSpace(f))
			if f != "" {
				kept = append(kept, f)
			}
		}
		if len(kept) > 0 {
			cats[strings.ToLower(strings.TrimSpace(name))] = kept
		}
	}
	return cats, nil
}

// containsAny reports whether s contains at least one of the fragments.
func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
