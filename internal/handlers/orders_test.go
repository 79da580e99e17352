package handlers

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func validOrderRequest() createOrderRequest {
	return createOrderRequest{
		Products: []orderProductRequest{
			{ID: "a", Name: "Widget", Price: 10.00, Quantity: 2},
			{ID: "b", Name: "Gadget", Price: 25.00, Quantity: 1},
		},
		TotalAmount: 45.00,
	}
}

func TestBuildOrderFromRequest(t *testing.T) {
	userID := primitive.NewObjectID()

	order, err := buildOrderFromRequest(validOrderRequest(), userID)
	if err != nil {
		t.Fatalf("expected valid order, got %v", err)
	}
	if order.UserID != userID {
		t.Fatal("expected order bound to requesting user")
	}
	if order.Status != models.OrderStatusPending {
		t.Fatalf("expected new order pending, got %q", order.Status)
	}
	if order.TotalAmount != 45.00 {
		t.Fatalf("unexpected total %v", order.TotalAmount)
	}
	if len(order.Products) != 2 || order.Products[0].ID != "a" {
		t.Fatalf("unexpected products %+v", order.Products)
	}
	if order.Ref == "" || !strings.Contains(order.Ref, "-") {
		t.Fatalf("expected a generated order ref, got %q", order.Ref)
	}
	if order.CreatedAt.IsZero() {
		t.Fatal("expected createdAt set")
	}
}

func TestBuildOrderFromRequestRejections(t *testing.T) {
	userID := primitive.NewObjectID()

	cases := []struct {
		name   string
		mutate func(*createOrderRequest)
	}{
		{"empty products", func(r *createOrderRequest) { r.Products = nil }},
		{"zero total", func(r *createOrderRequest) { r.TotalAmount = 0 }},
		{"missing product id", func(r *createOrderRequest) { r.Products[0].ID = "  " }},
		{"zero quantity", func(r *createOrderRequest) { r.Products[0].Quantity = 0 }},
		{"negative price", func(r *createOrderRequest) { r.Products[0].Price = -1 }},
		{"total mismatch", func(r *createOrderRequest) { r.TotalAmount = 50.00 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validOrderRequest()
			tc.mutate(&req)
			if _, err := buildOrderFromRequest(req, userID); err == nil {
				t.Fatal("expected rejection")
			}
		})
	}
}

func TestBuildOrderFromRequestAllowsFloatDrift(t *testing.T) {
	req := validOrderRequest()
	req.TotalAmount = 45.005

	if _, err := buildOrderFromRequest(req, primitive.NewObjectID()); err != nil {
		t.Fatalf("expected drift inside tolerance accepted, got %v", err)
	}
}

func TestGenerateOrderRefIsUnique(t *testing.T) {
	if generateOrderRef() == generateOrderRef() {
		t.Fatal("expected distinct refs")
	}
}

func TestValidateProductFields(t *testing.T) {
	if err := validateProductFields(productRequest{Name: "Widget", Price: 10}); err != nil {
		t.Fatalf("expected valid product, got %v", err)
	}
	if err := validateProductFields(productRequest{Name: "  ", Price: 10}); err == nil {
		t.Fatal("expected blank name rejected")
	}
	if err := validateProductFields(productRequest{Name: "Widget", Price: -5}); err == nil {
		t.Fatal("expected negative price rejected")
	}
}

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	if err != nil || page != 1 || limit != 20 {
		t.Fatalf("expected defaults 1/20, got %d/%d err=%v", page, limit, err)
	}

	page, limit, err = parsePaginationParams("3", "5")
	if err != nil || page != 3 || limit != 5 {
		t.Fatalf("expected 3/5, got %d/%d err=%v", page, limit, err)
	}

	if _, _, err := parsePaginationParams("0", ""); err == nil {
		t.Fatal("expected page below 1 rejected")
	}
	if _, _, err := parsePaginationParams("abc", ""); err == nil {
		t.Fatal("expected non-numeric page rejected")
	}
	if _, _, err := parsePaginationParams("", "-1"); err == nil {
		t.Fatal("expected negative limit rejected")
	}
}
