package enums

import "fmt"

// ShopkeeperAction is the customer action surfaced to a shop owner.
type ShopkeeperAction string

const (
	ShopkeeperActionLiked  ShopkeeperAction = "liked"
	ShopkeeperActionInCart ShopkeeperAction = "in_cart"
)

func (a ShopkeeperAction) String() string {
	return string(a)
}

func (a ShopkeeperAction) IsValid() bool {
	return a == ShopkeeperActionLiked || a == ShopkeeperActionInCart
}

func ParseShopkeeperAction(value string) (ShopkeeperAction, error) {
	a := ShopkeeperAction(value)
	if a.IsValid() {
		return a, nil
	}
	return "", fmt.Errorf("invalid shopkeeper action %q", value)
}
