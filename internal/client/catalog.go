package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bargen/bargen-backend/internal/products"
	"github.com/bargen/bargen-backend/internal/shops"
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
)

type ShopRequest struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	DistanceKm  float64 `json:"distanceKm"`
	Rating      int     `json:"rating"`
	PriceInfo   string  `json:"priceInfo"`
	Phone       string  `json:"phone"`
	LocationURL string  `json:"locationUrl"`
}

type ProductRequest struct {
	ShopID              *uuid.UUID               `json:"shopId,omitempty"`
	Name                string                   `json:"name"`
	Description         string                   `json:"description"`
	Price               int64                    `json:"price"`
	Condition           enums.ProductCondition   `json:"condition"`
	ReturnPolicy        string                   `json:"returnPolicy"`
	Age                 *types.ProductAge        `json:"age,omitempty"`
	VerificationLabels  types.VerificationLabels `json:"verificationLabels,omitempty"`
	PhotoRefs           []string                 `json:"photoRefs,omitempty"`
	ListingQualityScore *int                     `json:"listingQualityScore,omitempty"`
}

// BrowseQuery filters the joined catalog. Zero values are omitted.
type BrowseQuery struct {
	Query     string
	Condition enums.ProductCondition
	Sort      string
}

func (c *Client) CreateShop(ctx context.Context, req ShopRequest) (*shops.ShopDTO, error) {
	var out shops.ShopDTO
	if err := c.do(ctx, call{method: http.MethodPost, path: "/shops", body: req, out: &out, mutating: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyShops(ctx context.Context) ([]shops.ShopDTO, error) {
	var out []shops.ShopDTO
	err := c.do(ctx, call{method: http.MethodGet, path: "/shops/mine", out: &out})
	return out, err
}

func (c *Client) ListShops(ctx context.Context) ([]shops.ShopDTO, error) {
	var out []shops.ShopDTO
	err := c.do(ctx, call{method: http.MethodGet, path: "/shops", out: &out})
	return out, err
}

func (c *Client) GetShop(ctx context.Context, shopID uuid.UUID) (*shops.ShopDTO, error) {
	var out shops.ShopDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: "/shops/" + shopID.String(), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, shopID uuid.UUID, req ProductRequest) (*products.ProductWithShopDTO, error) {
	req.ShopID = &shopID
	var out products.ProductWithShopDTO
	if err := c.do(ctx, call{method: http.MethodPost, path: "/products", body: req, out: &out, mutating: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, productID uuid.UUID, req ProductRequest) (*products.ProductWithShopDTO, error) {
	return c.updateProduct(ctx, "/products/"+productID.String(), req)
}

// AdminUpdateProduct edits any listing; the caller must be an admin.
func (c *Client) AdminUpdateProduct(ctx context.Context, productID uuid.UUID, req ProductRequest) (*products.ProductWithShopDTO, error) {
	return c.updateProduct(ctx, "/admin/products/"+productID.String(), req)
}

func (c *Client) updateProduct(ctx context.Context, path string, req ProductRequest) (*products.ProductWithShopDTO, error) {
	req.ShopID = nil
	var out products.ProductWithShopDTO
	if err := c.do(ctx, call{method: http.MethodPut, path: path, body: req, out: &out, mutating: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/products/" + productID.String(), mutating: true})
}

func (c *Client) AdminDeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/admin/products/" + productID.String(), mutating: true})
}

func (c *Client) AdminListProducts(ctx context.Context) ([]products.ProductDTO, error) {
	var out []products.ProductDTO
	err := c.do(ctx, call{method: http.MethodGet, path: "/admin/products", out: &out})
	return out, err
}

func (c *Client) GetProduct(ctx context.Context, productID uuid.UUID) (*products.ProductWithShopDTO, error) {
	var out products.ProductWithShopDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: "/products/" + productID.String(), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProductsForShop(ctx context.Context, shopID uuid.UUID) ([]products.ProductWithShopDTO, error) {
	var out []products.ProductWithShopDTO
	err := c.do(ctx, call{method: http.MethodGet, path: "/shops/" + shopID.String() + "/products", out: &out})
	return out, err
}

func (c *Client) BrowseProducts(ctx context.Context, q BrowseQuery) ([]products.ProductWithShopDTO, error) {
	query := url.Values{}
	if q.Query != "" {
		query.Set("q", q.Query)
	}
	if q.Condition != "" {
		query.Set("condition", string(q.Condition))
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort)
	}
	var out []products.ProductWithShopDTO
	err := c.do(ctx, call{method: http.MethodGet, path: "/products", query: query, out: &out})
	return out, err
}

// CompareProduct lists the same product at other shops, ordered by sortKey
// (price, rating or distance).
func (c *Client) CompareProduct(ctx context.Context, productID uuid.UUID, sortKey string) (*products.CompareResult, error) {
	query := url.Values{}
	if sortKey != "" {
		query.Set("sort", sortKey)
	}
	var out products.CompareResult
	if err := c.do(ctx, call{method: http.MethodGet, path: "/products/" + productID.String() + "/compare", query: query, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProductPhoto returns the raw bytes of the index-th photo.
func (c *Client) ProductPhoto(ctx context.Context, productID uuid.UUID, index int) ([]byte, error) {
	var out []byte
	path := "/products/" + productID.String() + "/photos/" + strconv.Itoa(index)
	if err := c.do(ctx, call{method: http.MethodGet, path: path, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}
