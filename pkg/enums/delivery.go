package enums

import (
	"fmt"
	"strings"
)

// DeliveryStatus mirrors the delivery_status column on delivery_orders.
type DeliveryStatus string

const (
	DeliveryStatusDriverPendingAssignment DeliveryStatus = "driver_pending_assignment"
	DeliveryStatusPending                 DeliveryStatus = "pending"
	DeliveryStatusDriverAssigned          DeliveryStatus = "driver_assigned"
	DeliveryStatusPickingUp               DeliveryStatus = "picking_up"
	DeliveryStatusInTransit               DeliveryStatus = "in_transit"
	DeliveryStatusDelivered               DeliveryStatus = "delivered"
	DeliveryStatusCompleted               DeliveryStatus = "completed"
	DeliveryStatusFailed                  DeliveryStatus = "failed"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusDriverPendingAssignment,
	DeliveryStatusPending,
	DeliveryStatusDriverAssigned,
	DeliveryStatusPickingUp,
	DeliveryStatusInTransit,
	DeliveryStatusDelivered,
	DeliveryStatusCompleted,
	DeliveryStatusFailed,
}

func (s DeliveryStatus) String() string {
	return string(s)
}

func (s DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliveryStatusCompleted || s == DeliveryStatusFailed
}

func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	normalized := DeliveryStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}

// DeliveryOption distinguishes customer pickup from driver delivery.
type DeliveryOption string

const (
	DeliveryOptionPickup   DeliveryOption = "pickup"
	DeliveryOptionDelivery DeliveryOption = "delivery"
)

func (o DeliveryOption) String() string {
	return string(o)
}

func (o DeliveryOption) IsValid() bool {
	return o == DeliveryOptionPickup || o == DeliveryOptionDelivery
}

func ParseDeliveryOption(value string) (DeliveryOption, error) {
	normalized := DeliveryOption(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid delivery option %q", value)
}
