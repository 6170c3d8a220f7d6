package enums

import "fmt"

// BargainStatus tracks where a bargain request sits in the negotiation.
type BargainStatus string

const (
	BargainStatusPending  BargainStatus = "pending"
	BargainStatusAccepted BargainStatus = "accepted"
)

var validBargainStatuses = []BargainStatus{
	BargainStatusPending,
	BargainStatusAccepted,
}

func (s BargainStatus) String() string {
	return string(s)
}

func (s BargainStatus) IsValid() bool {
	for _, candidate := range validBargainStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseBargainStatus(value string) (BargainStatus, error) {
	for _, candidate := range validBargainStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bargain status %q", value)
}
