package domain

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"
)

// StoryItem is one content item of a page story.
// Attributes other than type, id and text are kept in Attrs so that
// attribute filters can test any field the source wiki attached.
type StoryItem struct {
	Type  string         `json:"type" mapstructure:"type"`
	ID    string         `json:"id,omitempty" mapstructure:"id"`
	Text  string         `json:"text" mapstructure:"text"`
	Attrs map[string]any `json:"-" mapstructure:",remain"`
}

// UnmarshalJSON decodes an item loosely: numeric or boolean text is accepted
// and every unknown key lands in Attrs.
func (s *StoryItem) UnmarshalJSON(data []byte) error {
	var item StoryItem
	if err := decodeLoose(data, &item); err != nil {
		return fmt.Errorf("failed to decode story item: %w", err)
	}
	*s = item
	return nil
}

// MarshalJSON flattens Attrs back next to the known fields.
func (s StoryItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Attrs)+3)
	for k, v := range s.Attrs {
		out[k] = v
	}
	out["type"] = s.Type
	out["text"] = s.Text
	if s.ID != "" {
		out["id"] = s.ID
	}
	return json.Marshal(out)
}

// Truthy reports whether attr is set to a truthy value on the item:
// non-empty strings, non-zero numbers, true, and any object or array.
func (s StoryItem) Truthy(attr string) bool {
	switch attr {
	case "type":
		return s.Type != ""
	case "id":
		return s.ID != ""
	case "text":
		return s.Text != ""
	}
	return truthy(s.Attrs[attr])
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}

// Action is one journal entry recording page provenance.
type Action struct {
	Type  string         `json:"type" mapstructure:"type"`
	ID    string         `json:"id,omitempty" mapstructure:"id"`
	Site  string         `json:"site,omitempty" mapstructure:"site"`
	Date  float64        `json:"date,omitempty" mapstructure:"date"`
	Attrs map[string]any `json:"-" mapstructure:",remain"`
}

// UnmarshalJSON decodes an action loosely, like StoryItem.
func (a *Action) UnmarshalJSON(data []byte) error {
	var action Action
	if err := decodeLoose(data, &action); err != nil {
		return fmt.Errorf("failed to decode journal action: %w", err)
	}
	*a = action
	return nil
}

// Page is a fetched wiki page. It is owned by the Mesh of one build and never mutated.
type Page struct {
	Title   string      `json:"title"`
	Story   []StoryItem `json:"story"`
	Journal []Action    `json:"journal,omitempty"`
}

// Slug returns the canonical slug of the page title.
func (p *Page) Slug() string {
	return Slug(p.Title)
}

// FirstItem returns the first story item of the given type.
func (p *Page) FirstItem(itemType string) (StoryItem, bool) {
	for _, item := range p.Story {
		if item.Type == itemType {
			return item, true
		}
	}
	return StoryItem{}, false
}

func decodeLoose(data []byte, out any) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
