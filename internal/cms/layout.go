package cms

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	invalidEntry   = "layout entry is not an object"
	invalidModule  = "module is not an object"
	invalidType    = "module type is not a string"
	invalidContent = "module content is not an object"
)

// UnmarshalJSON decodes one layout entry leniently so a single malformed block
// cannot fail the whole document.
func (e *LayoutEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Order  json.RawMessage `json:"order"`
		Module json.RawMessage `json:"module"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*e = LayoutEntry{Module: Module{Invalid: invalidEntry}}
		return nil
	}
	*e = LayoutEntry{Order: parseOrder(raw.Order)}
	if isNull(raw.Module) {
		return nil
	}
	return e.Module.UnmarshalJSON(raw.Module)
}

// UnmarshalJSON decodes a module leniently, recording malformed fields in Invalid.
func (m *Module) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      json.RawMessage `json:"_id"`
		Type    json.RawMessage `json:"type"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*m = Module{Invalid: invalidModule}
		return nil
	}
	*m = Module{}
	m.ID, _ = jsonString(raw.ID)

	typ, ok := jsonString(raw.Type)
	if !ok {
		m.Invalid = invalidType
	}
	m.Type = typ

	if isNull(raw.Content) {
		return nil
	}
	var content map[string]any
	if err := json.Unmarshal(raw.Content, &content); err != nil {
		if m.Invalid == "" {
			m.Invalid = invalidContent
		}
		return nil
	}
	m.Content = content
	return nil
}

// UnmarshalYAML applies the same lenient rules to fixture documents.
func (e *LayoutEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		*e = LayoutEntry{Module: Module{Invalid: invalidEntry}}
		return nil
	}
	*e = LayoutEntry{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "order":
			if value.Kind == yaml.ScalarNode {
				e.Order, _ = strconv.ParseFloat(strings.TrimSpace(value.Value), 64)
			}
		case "module":
			if err := e.Module.UnmarshalYAML(value); err != nil {
				return err
			}
		}
	}
	return nil
}

// UnmarshalYAML decodes a fixture module leniently.
func (m *Module) UnmarshalYAML(node *yaml.Node) error {
	*m = Module{}
	if node.Kind != yaml.MappingNode {
		m.Invalid = invalidModule
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "_id":
			if value.Kind == yaml.ScalarNode {
				m.ID = value.Value
			}
		case "type":
			if value.Kind == yaml.ScalarNode && value.Tag == "!!str" {
				m.Type = value.Value
			} else if value.Tag != "!!null" {
				m.Invalid = invalidType
			}
		case "content":
			if value.Tag == "!!null" {
				continue
			}
			var content map[string]any
			if value.Kind != yaml.MappingNode || value.Decode(&content) != nil {
				if m.Invalid == "" {
					m.Invalid = invalidContent
				}
				continue
			}
			m.Content = content
		}
	}
	return nil
}

func parseOrder(raw json.RawMessage) float64 {
	if isNull(raw) {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	if s, ok := jsonString(raw); ok {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n
		}
	}
	return 0
}

// jsonString decodes a JSON string; absent or null yields ("", true).
func jsonString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
