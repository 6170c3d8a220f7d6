package delivery

import (
	"crypto/subtle"
	"strings"

	"github.com/bargen/bargen-backend/pkg/enums"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
)

type actor struct {
	driver    bool
	shopOwner bool
}

// driverSteps is the forward path a driver walks once assigned.
var driverSteps = map[enums.DeliveryStatus]enums.DeliveryStatus{
	enums.DeliveryStatusDriverAssigned: enums.DeliveryStatusPickingUp,
	enums.DeliveryStatusPickingUp:      enums.DeliveryStatusInTransit,
	enums.DeliveryStatusInTransit:      enums.DeliveryStatusDelivered,
}

// checkTransition validates from -> to for the acting party. code is the
// completion code the actor supplied; expected is the order's code.
func checkTransition(from, to enums.DeliveryStatus, who actor, code, expected string) error {
	if from.IsTerminal() {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is already %s", from)
	}

	switch {
	case to == enums.DeliveryStatusFailed:
		if !who.driver && !who.shopOwner {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the driver or shop owner can fail an order")
		}
		return nil

	case driverSteps[from] == to:
		if !who.driver {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the assigned driver can advance this order")
		}
		return nil

	case from == enums.DeliveryStatusDelivered && to == enums.DeliveryStatusCompleted:
		if !who.driver {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the assigned driver can complete this order")
		}
		return matchCode(code, expected)

	case from == enums.DeliveryStatusPending && to == enums.DeliveryStatusCompleted:
		if !who.shopOwner {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the shop owner can complete a pickup")
		}
		return matchCode(code, expected)
	}

	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", from, to)
}

func matchCode(code, expected string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "completion code is required")
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(expected)) != 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "completion code does not match")
	}
	return nil
}
