package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// AgeKind is the discriminant of a product age bucket.
type AgeKind string

const (
	AgeKindDays     AgeKind = "days"
	AgeKindMonths   AgeKind = "months"
	AgeKindYears    AgeKind = "years"
	AgeKindBrandNew AgeKind = "brandNew"
	AgeKindUnknown  AgeKind = "unknown"
)

// AgeTime is a coarse time bucket. Value is set only for days, months and years.
type AgeTime struct {
	Kind  AgeKind `json:"kind"`
	Value *int64  `json:"value,omitempty"`
}

// ProductAge describes how old a listed item is.
type ProductAge struct {
	ConditionDescription string  `json:"conditionDescription"`
	Time                 AgeTime `json:"time"`
}

func AgeDays(n int64) AgeTime { return AgeTime{Kind: AgeKindDays, Value: &n} }
func AgeMonths(n int64) AgeTime { return AgeTime{Kind: AgeKindMonths, Value: &n} }
func AgeYears(n int64) AgeTime { return AgeTime{Kind: AgeKindYears, Value: &n} }
func AgeBrandNew() AgeTime { return AgeTime{Kind: AgeKindBrandNew} }
func AgeUnknown() AgeTime { return AgeTime{Kind: AgeKindUnknown} }

// Validate enforces the variant shape for each kind.
func (t AgeTime) Validate() error {
	switch t.Kind {
	case AgeKindDays, AgeKindMonths, AgeKindYears:
		if t.Value == nil {
			return fmt.Errorf("age %s requires a value", t.Kind)
		}
		if *t.Value < 0 {
			return fmt.Errorf("age %s must be >= 0", t.Kind)
		}
		return nil
	case AgeKindBrandNew, AgeKindUnknown:
		if t.Value != nil {
			return fmt.Errorf("age %s does not take a value", t.Kind)
		}
		return nil
	case "":
		return errors.New("age kind is required")
	default:
		return fmt.Errorf("invalid age kind %q", t.Kind)
	}
}

// Describe renders the bucket for display, e.g. "3 months".
func (t AgeTime) Describe() string {
	switch t.Kind {
	case AgeKindDays, AgeKindMonths, AgeKindYears:
		if t.Value == nil {
			return string(t.Kind)
		}
		unit := string(t.Kind)
		if *t.Value == 1 {
			unit = unit[:len(unit)-1]
		}
		return fmt.Sprintf("%d %s", *t.Value, unit)
	case AgeKindBrandNew:
		return "brand new"
	default:
		return "unknown"
	}
}

func (a ProductAge) Validate() error {
	return a.Time.Validate()
}

// Value persists the age as JSONB.
func (a ProductAge) Value() (driver.Value, error) {
	buf, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes the JSONB column.
func (a *ProductAge) Scan(value interface{}) error {
	if value == nil {
		*a = ProductAge{}
		return nil
	}
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("product age: %w", err)
	}
	return json.Unmarshal(raw, a)
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
