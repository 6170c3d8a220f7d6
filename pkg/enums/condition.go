package enums

import (
	"fmt"
	"strings"
)

// ProductCondition is the listed physical condition of a product.
type ProductCondition string

const (
	ProductConditionNew  ProductCondition = "new"
	ProductConditionUsed ProductCondition = "used"
)

var validProductConditions = []ProductCondition{
	ProductConditionNew,
	ProductConditionUsed,
}

func (c ProductCondition) String() string {
	return string(c)
}

// IsValid reports whether the condition is one of the canonical values.
func (c ProductCondition) IsValid() bool {
	for _, candidate := range validProductConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCondition converts raw input into a ProductCondition.
func ParseProductCondition(value string) (ProductCondition, error) {
	normalized := ProductCondition(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid product condition %q", value)
}
