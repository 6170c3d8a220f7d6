package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PhotoRefs is an ordered list of opaque blob references persisted as JSONB.
type PhotoRefs []string

// Clean trims refs and drops blanks while keeping order.
func (p PhotoRefs) Clean() PhotoRefs {
	out := make(PhotoRefs, 0, len(p))
	for _, ref := range p {
		if ref = strings.TrimSpace(ref); ref != "" {
			out = append(out, ref)
		}
	}
	return out
}

func (p PhotoRefs) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	buf, err := json.Marshal([]string(p))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *PhotoRefs) Scan(value interface{}) error {
	if value == nil {
		*p = PhotoRefs{}
		return nil
	}
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("photo refs: %w", err)
	}
	var refs []string
	if err := json.Unmarshal(raw, &refs); err != nil {
		return err
	}
	*p = refs
	return nil
}
