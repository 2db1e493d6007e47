package spec

import (
	"encoding/json"
	"strings"
)

// CommandText is the editable form of a command or argument list: one token
// per line. The manifest form is a token list; the two are connected only
// through Tokens and CommandTextFromTokens.
type CommandText string

// Tokens splits the text on newlines, trims every line and drops blank ones.
// Blank tokens therefore never survive a round trip.
func (c CommandText) Tokens() []string {
	if c == "" {
		return nil
	}
	var tokens []string
	for _, line := range strings.Split(string(c), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tokens = append(tokens, line)
		}
	}
	return tokens
}

// CommandTextFromTokens joins manifest tokens back into editable text.
func CommandTextFromTokens(tokens []string) CommandText {
	return CommandText(strings.Join(tokens, "\n"))
}

// UnmarshalJSON accepts either the newline-joined text or a token list.
func (c *CommandText) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*c = CommandText(text)
		return nil
	}
	var tokens []string
	if err := json.Unmarshal(data, &tokens); err != nil {
		return err
	}
	*c = CommandTextFromTokens(tokens)
	return nil
}

// ValueList is a list of selector values. Editors often submit it as a
// single comma separated string, which is accepted on decode.
type ValueList []string

// ParseValueList splits a comma separated string, trimming each entry.
func ParseValueList(raw string) ValueList {
	var out ValueList
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (v *ValueList) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*v = ParseValueList(raw)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*v = list
	return nil
}

// KeyValue is one editable label or annotation row.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PodMetadataSpec carries extra labels and annotations stamped onto pods.
type PodMetadataSpec struct {
	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}
