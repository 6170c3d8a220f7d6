package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type VerificationLabel struct {
	LabelText   string `json:"labelText" validate:"required"`
	Description string `json:"description"`
}

// VerificationLabels is a set of labels persisted as JSONB. Duplicate label
// texts collapse to the first occurrence.
type VerificationLabels []VerificationLabel

// Normalize trims labels, drops empties and removes case-insensitive duplicates.
func (l VerificationLabels) Normalize() VerificationLabels {
	out := make(VerificationLabels, 0, len(l))
	seen := make(map[string]struct{}, len(l))
	for _, label := range l {
		text := strings.TrimSpace(label.LabelText)
		if text == "" {
			continue
		}
		key := strings.ToLower(text)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, VerificationLabel{LabelText: text, Description: strings.TrimSpace(label.Description)})
	}
	return out
}

func (l VerificationLabels) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (l *VerificationLabels) Scan(value interface{}) error {
	if value == nil {
		*l = VerificationLabels{}
		return nil
	}
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("verification labels: %w", err)
	}
	result := VerificationLabels{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*l = result
	return nil
}
