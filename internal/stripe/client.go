package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultAPIBase = "https://api.stripe.com/v1"

// Client is a thin wrapper over the provider's form-encoded REST API.
// Hanya endpoint product/price yang dipakai pipeline sync.
type Client struct {
	APIBase    string
	Key        string
	HTTPClient *http.Client
}

func NewClient(key string) *Client {
	return &Client{
		APIBase:    DefaultAPIBase,
		Key:        key,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Active      bool              `json:"active"`
	Images      []string          `json:"images"`
	Metadata    map[string]string `json:"metadata"`
}

type Price struct {
	ID         string `json:"id"`
	Product    string `json:"product"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
	Active     bool   `json:"active"`
}

type ProductParams struct {
	Name        string
	Description string
	Images      []string
	Metadata    map[string]string
}

func (p ProductParams) form() url.Values {
	v := url.Values{}
	v.Set("name", p.Name)
	if p.Description != "" {
		v.Set("description", p.Description)
	}
	for i, img := range p.Images {
		v.Set(fmt.Sprintf("images[%d]", i), img)
	}
	for k, val := range p.Metadata {
		v.Set("metadata["+k+"]", val)
	}
	return v
}

func (c *Client) CreateProduct(ctx context.Context, p ProductParams) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPost, "/products", p.form(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, "/products/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, p ProductParams) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPost, "/products/"+id, p.form(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeactivateProduct is the provider-side soft delete: active=false,
// object tetap ada untuk referensi historis.
func (c *Client) DeactivateProduct(ctx context.Context, id string) (*Product, error) {
	v := url.Values{}
	v.Set("active", "false")
	var out Product
	if err := c.do(ctx, http.MethodPost, "/products/"+id, v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePrice(ctx context.Context, productID string, unitAmount int64, currency string) (*Price, error) {
	v := url.Values{}
	v.Set("product", productID)
	v.Set("unit_amount", strconv.FormatInt(unitAmount, 10))
	v.Set("currency", currency)
	var out Price
	if err := c.do(ctx, http.MethodPost, "/prices", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPrice(ctx context.Context, id string) (*Price, error) {
	var out Price
	if err := c.do(ctx, http.MethodGet, "/prices/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Provider prices are immutable; harga berubah berarti deactivate yang lama
// dan create price baru. Tidak pernah hard delete.
func (c *Client) DeactivatePrice(ctx context.Context, id string) (*Price, error) {
	v := url.Values{}
	v.Set("active", "false")
	var out Price
	if err := c.do(ctx, http.MethodPost, "/prices/"+id, v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.APIBase+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Key)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("stripe %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("stripe %s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode >= 400 {
		var wrapper struct {
			Error Error `json:"error"`
		}
		if jsonErr := json.Unmarshal(b, &wrapper); jsonErr != nil || wrapper.Error.Message == "" {
			wrapper.Error.Message = strings.TrimSpace(string(b))
		}
		wrapper.Error.Status = resp.StatusCode
		return &wrapper.Error
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("stripe %s %s: decode: %w", method, path, err)
	}
	return nil
}
