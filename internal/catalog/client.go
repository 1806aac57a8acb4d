package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/gabrielasoto/aurelia-backend/pkg/errors"
	"github.com/gabrielasoto/aurelia-backend/pkg/httpx"
)

// Product mirrors the descriptor served by the catalog service.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"`
	Description string          `json:"description"`
}

// Client reads products from the external catalog service. The catalog
// is never reimplemented here; stale references surface as errors and
// are left in the cart for the user to resolve.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds the catalog client for the given base URL.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, fmt.Errorf("catalog base url is required")
	}
	if httpClient == nil {
		httpClient = httpx.NewClient(0)
	}
	return &Client{httpClient: httpClient, baseURL: trimmed}, nil
}

// List fetches every product descriptor.
func (c *Client) List(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := httpx.GetJSON(ctx, c.httpClient, httpx.JoinURL(c.baseURL, "/products"), &products); err != nil {
		return nil, mapCatalogError(err, "list products")
	}
	return products, nil
}

// Get fetches one product by its identifier.
func (c *Client) Get(ctx context.Context, id string) (*Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var product Product
	path := "/products/" + url.PathEscape(id)
	if err := httpx.GetJSON(ctx, c.httpClient, httpx.JoinURL(c.baseURL, path), &product); err != nil {
		return nil, mapCatalogError(err, "load product")
	}
	return &product, nil
}

func mapCatalogError(err error, op string) error {
	var statusErr *httpx.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
