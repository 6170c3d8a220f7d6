package wishlist

import (
	"time"

	"github.com/bargen/bargen-backend/internal/products"
)

// WishlistItemDTO wraps the liked product with the time it was liked.
type WishlistItemDTO struct {
	products.ProductWithShopDTO
	LikedAt time.Time `json:"likedAt"`
}

type LikedDTO struct {
	Liked bool `json:"liked"`
}
