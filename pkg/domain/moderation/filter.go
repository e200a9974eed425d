package moderation

import (
	"bytes"
	"fmt"

	"github.com/valyala/fastjson"
)

var parserPool fastjson.ParserPool

// FilterEntry is one element of user_filters. Callers send either a plain
// label ("gore") or an object carrying a term or label field.
type FilterEntry struct {
	Structured bool
	Text       string
	Term       string
	Label      string
}

// StringFilter builds an entry from a plain label.
func StringFilter(text string) FilterEntry {
	return FilterEntry{Text: text}
}

// StructuredFilter builds an entry from an object form.
func StructuredFilter(term, label string) FilterEntry {
	return FilterEntry{Structured: true, Term: term, Label: label}
}

// Value returns the label carried by the entry, or "" when it has none.
func (e FilterEntry) Value() string {
	if !e.Structured {
		return e.Text
	}
	if e.Term != "" {
		return e.Term
	}
	return e.Label
}

// ParseFilterEntries decodes the raw user_filters JSON. A JSON string is
// treated as a single-element list and null or empty input yields no entries.
func ParseFilterEntries(raw []byte) ([]FilterEntry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(raw)
	if err != nil {
		return nil, NewInputError(fmt.Sprintf("Invalid user_filters: %v", err))
	}

	switch v.Type() {
	case fastjson.TypeNull:
		return nil, nil
	case fastjson.TypeString:
		return []FilterEntry{StringFilter(string(v.GetStringBytes()))}, nil
	case fastjson.TypeArray:
	default:
		return nil, NewInputError("Invalid user_filters: expected a list")
	}

	items, err := v.Array()
	if err != nil {
		return nil, NewInputError(fmt.Sprintf("Invalid user_filters: %v", err))
	}

	entries := make([]FilterEntry, 0, len(items))
	for _, item := range items {
		switch item.Type() {
		case fastjson.TypeString:
			entries = append(entries, StringFilter(string(item.GetStringBytes())))
		case fastjson.TypeObject:
			entries = append(entries, StructuredFilter(
				stringField(item, "term"),
				stringField(item, "label"),
			))
		}
	}
	return entries, nil
}

func stringField(v *fastjson.Value, key string) string {
	field := v.Get(key)
	if field == nil || field.Type() != fastjson.TypeString {
		return ""
	}
	return string(field.GetStringBytes())
}

// NormalizeFilters flattens entries into labels, dropping the ones without a
// usable string. Order and duplicates are kept.
func NormalizeFilters(entries []FilterEntry) ([]string, error) {
	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		if v := e.Value(); v != "" {
			labels = append(labels, v)
		}
	}
	if len(labels) == 0 {
		return nil, ErrNoFilters
	}
	return labels, nil
}

// NormalizeRawFilters parses and normalizes user_filters in one step.
func NormalizeRawFilters(raw []byte) ([]string, error) {
	entries, err := ParseFilterEntries(raw)
	if err != nil {
		return nil, err
	}
	return NormalizeFilters(entries)
}

// ParseSettings decodes filter_settings, a JSON object of label to level.
// Non-string levels are ignored.
func ParseSettings(raw []byte) (Settings, error) {
	settings := Settings{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return settings, nil
	}

	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(raw)
	if err != nil {
		return nil, NewInputError(fmt.Sprintf("Invalid filter_settings: %v", err))
	}
	if v.Type() == fastjson.TypeNull {
		return settings, nil
	}
	obj, err := v.Object()
	if err != nil {
		return nil, NewInputError("Invalid filter_settings: expected an object")
	}
	obj.Visit(func(key []byte, level *fastjson.Value) {
		if level.Type() != fastjson.TypeString {
			return
		}
		settings[string(key)] = ParseSensitivity(string(level.GetStringBytes()))
	})
	return settings, nil
}
