package models

import "github.com/google/uuid"

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model, in dependency order, for sqlite AutoMigrate.
func All() []any {
	return []any{
		&UserProfile{},
		&Shop{},
		&Product{},
		&BargainRequest{},
		&CartItem{},
		&InsuranceSelection{},
		&Message{},
		&WishlistItem{},
		&ShopkeeperNotification{},
		&DeliveryPartner{},
		&DeliveryOrder{},
	}
}
