package catalog

import (
	"github.com/dentaldesk/dentaldesk/internal/shared"
)

// MergeToggles combines the backend categories with the saved flags. New
// categories start enabled; categories the backend no longer lists are dropped.
func MergeToggles(categories []Category, saved []CategoryToggle) []CategoryToggle {
	flags := make(map[string]bool, len(saved))
	for _, t := range saved {
		flags[t.ID] = t.Enabled
	}
	out := make([]CategoryToggle, 0, len(categories))
	for _, c := range categories {
		enabled, known := flags[c.ID.String()]
		if !known {
			enabled = true
		}
		out = append(out, CategoryToggle{ID: c.ID.String(), Name: c.Name, Enabled: enabled})
	}
	return out
}

// EnabledNames lists the names of enabled categories in order.
func EnabledNames(toggles []CategoryToggle) []string {
	names := make([]string, 0, len(toggles))
	for _, t := range toggles {
		if t.Enabled {
			names = append(names, t.Name)
		}
	}
	return names
}

// SavedToggles reads the flags stored in the session.
func SavedToggles(sess *shared.Session) []CategoryToggle {
	var toggles []CategoryToggle
	if !sess.GetJSON(shared.SessionKeyProductCategories, &toggles) {
		return nil
	}
	return toggles
}

// SaveToggles replaces the stored flags with toggles, enabling exactly the
// ids in enabled.
func SaveToggles(sess *shared.Session, toggles []CategoryToggle, enabled map[string]bool) []CategoryToggle {
	out := make([]CategoryToggle, len(toggles))
	for i, t := range toggles {
		t.Enabled = enabled[t.ID]
		out[i] = t
	}
	if sess != nil {
		_ = sess.SetJSON(shared.SessionKeyProductCategories, out)
	}
	return out
}
