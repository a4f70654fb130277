package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetshop/go-sweetshop-backend/internal/domain"
	"github.com/sweetshop/go-sweetshop-backend/internal/services"
)

// purchasePayload mirrors PurchaseResponse with concrete types for decoding.
type purchasePayload struct {
	Purchase domain.Purchase `json:"purchase"`
	Sweet    domain.Sweet    `json:"sweet"`
}

func newStockRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newSweetDB(t)
	h := New(
		services.NewCatalogService(db, testCatalogRepo{}),
		&services.StockService{DB: db},
		&services.HistoryService{DB: db},
	)

	r := gin.New()
	r.POST("/sweets", h.CreateSweet)
	r.POST("/sweets/:id/purchase", h.PurchaseSweet)
	r.POST("/sweets/:id/restock", h.RestockSweet)
	return r, db
}

func doPurchase(r *gin.Engine, id, body, user, idemKey string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, "/sweets/"+id+"/purchase", nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/sweets/"+id+"/purchase", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}
	r.ServeHTTP(w, req)
	return w
}

// ---------- PurchaseSweet ----------

func TestPurchaseSweet_DefaultQuantityOne(t *testing.T) {
	r, _ := newStockRouter(t)
	sw := adminCreateSweet(t, r, `{"name":"Fudge","category":"toffee","price":"5.00","quantity":10}`)

	// No body at all: buy one.
	w := doPurchase(r, sw.ID, "", "u1", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("purchase -> %d: %s", w.Code, w.Body.String())
	}
	var resp purchasePayload
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Purchase.Quantity != 1 || resp.Sweet.Quantity != 9 {
		t.Fatalf("expected qty 1 purchase leaving 9, got %+v", resp)
	}
	if resp.Purchase.UserID != "u1" {
		t.Fatalf("expected purchase for u1, got %q", resp.Purchase.UserID)
	}
}

func TestPurchaseSweet_ExplicitQuantity_AndTotals(t *testing.T) {
	r, _ := newStockRouter(t)
	sw := adminCreateSweet(t, r, `{"name":"Gulab Jamun","category":"milk-based","price":"5.00","quantity":15}`)

	w := doPurchase(r, sw.ID, `{"quantity":3}`, "u1", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("purchase -> %d: %s", w.Code, w.Body.String())
	}
	var resp purchasePayload
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Sweet.Quantity != 12 {
		t.Fatalf("expected remaining 12, got %d", resp.Sweet.Quantity)
	}
	if resp.Purchase.TotalPrice.String() != "15" && resp.Purchase.TotalPrice.String() != "15.00" {
		t.Fatalf("expected total 15.00, got %s", resp.Purchase.TotalPrice)
	}
}

func TestPurchaseSweet_ErrorPaths(t *testing.T) {
	r, _ := newStockRouter(t)
	sw := adminCreateSweet(t, r, `{"name":"Jalebi","category":"syrup-based","price":"8.00","quantity":2}`)

	// Malformed id.
	if w := doPurchase(r, "not-a-uuid", "", "u1", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id -> %d", w.Code)
	}

	// Unknown sweet.
	if w := doPurchase(r, uuid.NewString(), "", "u1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing sweet -> %d", w.Code)
	}

	// Zero / negative quantity.
	if w := doPurchase(r, sw.ID, `{"quantity":0}`, "u1", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("zero qty -> %d", w.Code)
	}
	if w := doPurchase(r, sw.ID, `{"quantity":-2}`, "u1", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("negative qty -> %d", w.Code)
	}

	// Oversell -> 409 with the insufficient_stock code.
	w := doPurchase(r, sw.ID, `{"quantity":5}`, "u1", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("oversell -> %d", w.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &er)
	if er.Code != ErrCodeInsufficientStock {
		t.Fatalf("expected %q, got %q", ErrCodeInsufficientStock, er.Code)
	}
}

func TestPurchaseSweet_IdempotentReplay(t *testing.T) {
	r, db := newStockRouter(t)
	sw := adminCreateSweet(t, r, `{"name":"Kaju Katli","category":"milk-based","price":"25.00","quantity":10}`)

	// First request charges stock.
	w := doPurchase(r, sw.ID, `{"quantity":2}`, "u1", "retry-1")
	if w.Code != http.StatusCreated {
		t.Fatalf("first purchase -> %d: %s", w.Code, w.Body.String())
	}
	var first purchasePayload
	_ = json.Unmarshal(w.Body.Bytes(), &first)
	if first.Sweet.Quantity != 8 {
		t.Fatalf("expected remaining 8, got %d", first.Sweet.Quantity)
	}

	// Retry with the same key replays the recorded purchase, no second charge.
	w = doPurchase(r, sw.ID, `{"quantity":2}`, "u1", "retry-1")
	if w.Code != http.StatusCreated {
		t.Fatalf("replay -> %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("expected Idempotency-Replayed header")
	}
	var second purchasePayload
	_ = json.Unmarshal(w.Body.Bytes(), &second)
	if second.Purchase.ID != first.Purchase.ID {
		t.Fatalf("replay returned a different purchase: %s vs %s", second.Purchase.ID, first.Purchase.ID)
	}

	var got domain.Sweet
	if err := db.First(&got, "id = ?", sw.ID).Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.Quantity != 8 {
		t.Fatalf("stock charged twice: %d", got.Quantity)
	}

	// A different key is a fresh purchase.
	w = doPurchase(r, sw.ID, `{"quantity":1}`, "u1", "retry-2")
	if w.Code != http.StatusCreated || w.Header().Get("Idempotency-Replayed") != "" {
		t.Fatalf("fresh key -> %d replayed=%q", w.Code, w.Header().Get("Idempotency-Replayed"))
	}
}

// ---------- RestockSweet ----------

func TestRestockSweet_AdminOnly_Success_Errors(t *testing.T) {
	r, _ := newStockRouter(t)
	sw := adminCreateSweet(t, r, `{"name":"Fudge","category":"toffee","price":"5.00","quantity":10}`)

	// Non-admin -> 403.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sweets/"+sw.ID+"/restock", bytes.NewBufferString(`{"quantity":5}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin restock -> %d", w.Code)
	}

	// Success -> 200 with new quantity.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/sweets/"+sw.ID+"/restock", bytes.NewBufferString(`{"quantity":5}`))
	req.Header.Set("X-User-Role", "admin")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("restock -> %d: %s", w.Code, w.Body.String())
	}
	var got domain.Sweet
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Quantity != 15 {
		t.Fatalf("expected quantity 15, got %d", got.Quantity)
	}

	// Negative quantity -> 400.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/sweets/"+sw.ID+"/restock", bytes.NewBufferString(`{"quantity":-5}`))
	req.Header.Set("X-User-Role", "admin")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative restock -> %d", w.Code)
	}

	// Unknown sweet -> 404.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/sweets/"+uuid.NewString()+"/restock", bytes.NewBufferString(`{"quantity":5}`))
	req.Header.Set("X-User-Role", "admin")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing sweet restock -> %d", w.Code)
	}
}
