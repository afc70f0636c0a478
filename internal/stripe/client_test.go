package stripe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/meistrid/go-catalog-sync/internal/stripe"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *stripe.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := stripe.NewClient("sk_test_123")
	c.APIBase = srv.URL
	return c
}

func TestCreateProduct(t *testing.T) {
	c := qt.New(t)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		c.Check(r.Method, qt.Equals, http.MethodPost)
		c.Check(r.URL.Path, qt.Equals, "/products")
		c.Check(r.Header.Get("Authorization"), qt.Equals, "Bearer sk_test_123")
		c.Check(r.Header.Get("Content-Type"), qt.Equals, "application/x-www-form-urlencoded")

		c.Check(r.ParseForm(), qt.IsNil)
		c.Check(r.PostForm.Get("name"), qt.Equals, `Kuju "Kärp"`)
		c.Check(r.PostForm.Get("metadata[product_id]"), qt.Equals, "p1")
		c.Check(r.PostForm.Get("images[0]"), qt.Equals, "https://img.example/karp.jpg")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"prod_123","name":"Kuju \"Kärp\"","active":true}`))
	})

	p, err := client.CreateProduct(context.Background(), stripe.ProductParams{
		Name:     `Kuju "Kärp"`,
		Images:   []string{"https://img.example/karp.jpg"},
		Metadata: map[string]string{"product_id": "p1"},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(p.ID, qt.Equals, "prod_123")
	c.Assert(p.Active, qt.IsTrue)
}

func TestCreatePrice(t *testing.T) {
	c := qt.New(t)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		c.Check(r.URL.Path, qt.Equals, "/prices")
		c.Check(r.ParseForm(), qt.IsNil)
		c.Check(r.PostForm.Get("product"), qt.Equals, "prod_123")
		c.Check(r.PostForm.Get("unit_amount"), qt.Equals, "34900")
		c.Check(r.PostForm.Get("currency"), qt.Equals, "eur")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"price_1","product":"prod_123","unit_amount":34900,"currency":"eur","active":true}`))
	})

	pr, err := client.CreatePrice(context.Background(), "prod_123", 34900, "eur")
	c.Assert(err, qt.IsNil)
	c.Assert(pr.ID, qt.Equals, "price_1")
	c.Assert(pr.UnitAmount, qt.Equals, int64(34900))
}

func TestDeactivateProduct(t *testing.T) {
	c := qt.New(t)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		c.Check(r.Method, qt.Equals, http.MethodPost)
		c.Check(r.URL.Path, qt.Equals, "/products/prod_123")
		c.Check(r.ParseForm(), qt.IsNil)
		c.Check(r.PostForm.Get("active"), qt.Equals, "false")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"prod_123","active":false}`))
	})

	p, err := client.DeactivateProduct(context.Background(), "prod_123")
	c.Assert(err, qt.IsNil)
	c.Assert(p.Active, qt.IsFalse)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		isNotFound bool
		isInvalid  bool
	}{
		{
			name:       "resource missing",
			status:     http.StatusNotFound,
			body:       `{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such product: 'prod_x'"}}`,
			isNotFound: true,
		},
		{
			name:      "invalid request",
			status:    http.StatusBadRequest,
			body:      `{"error":{"type":"invalid_request_error","code":"parameter_invalid_integer","message":"unit_amount must be positive"}}`,
			isInvalid: true,
		},
		{
			name:   "server error, non-json body",
			status: http.StatusBadGateway,
			body:   `upstream timeout`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.GetProduct(context.Background(), "prod_x")
			c.Assert(err, qt.IsNotNil)
			c.Assert(stripe.IsNotFound(err), qt.Equals, tt.isNotFound)
			c.Assert(stripe.IsInvalidRequest(err), qt.Equals, tt.isInvalid)

			var se *stripe.Error
			c.Assert(err, qt.ErrorAs, &se)
			c.Assert(se.Status, qt.Equals, tt.status)
		})
	}
}
