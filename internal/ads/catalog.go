package ads

import (
	"encoding/json"
	"fmt"
	"os"
)

// Creative is one advertisement definition. The catalog is static
// configuration; creatives are never mutated at runtime.
type Creative struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	ButtonText string `json:"button_text"`
	URL        string `json:"url"`
	Priority   int    `json:"priority"` // lower = higher priority
	Active     bool   `json:"active"`
}

// lowest priority used when the catalog omits the field
const defaultPriority = 999

type catalogEntry struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	ButtonText string `json:"button_text"`
	URL        string `json:"url"`
	Priority   *int   `json:"priority"`
	Active     *bool  `json:"active"`
}

// LoadCatalog reads the ad catalog from a JSON file. Priority defaults to the
// lowest rank and active defaults to true, matching entries that omit them.
func LoadCatalog(path string) ([]Creative, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ad catalog: %w", err)
	}
	var entries []catalogEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse ad catalog %s: %w", path, err)
	}
	seen := make(map[string]bool, len(entries))
	out := make([]Creative, 0, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("ad catalog %s: entry %d has no id", path, i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("ad catalog %s: duplicate id %q", path, e.ID)
		}
		seen[e.ID] = true
		c := Creative{
			ID:         e.ID,
			Text:       e.Text,
			ButtonText: e.ButtonText,
			URL:        e.URL,
			Priority:   defaultPriority,
			Active:     true,
		}
		if e.Priority != nil {
			c.Priority = *e.Priority
		}
		if e.Active != nil {
			c.Active = *e.Active
		}
		out = append(out, c)
	}
	return out, nil
}
