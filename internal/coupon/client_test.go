package coupon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tripquote/internal/domain"
)

func sampleRequest() Request {
	return Request{
		Category:        CategoryTransport,
		Code:            "SUMMER10",
		BaseTotal:       96,
		Currency:        "EUR",
		ServiceDateTime: "2026-07-01 09:30",
		ResourceID:      7,
		CategoryKeys:    []string{"nice-airport", "monaco"},
		Email:           "rider@example.com",
		Fingerprint:     "abc123",
	}
}

func TestHTTPValidator_OK(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/coupons/validate" {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if _, leaked := raw["fingerprint"]; leaked {
			t.Errorf("fingerprint must not be sent upstream")
		}
		got.Code, _ = raw["code"].(string)
		got.Category, _ = raw["category"].(string)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"couponId":4,"code":"SUMMER10","discountAmount":9.6,"baseTotal":96,"finalTotal":86.4,"partnerId":"p-1"}`))
	}))
	defer srv.Close()

	v := NewHTTPValidator(srv.URL+"/", time.Second)
	resp, err := v.Validate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !resp.OK || resp.CouponID != 4 || resp.DiscountAmount != 9.6 || resp.PartnerID != "p-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if got.Code != "SUMMER10" || got.Category != CategoryTransport {
		t.Fatalf("unexpected request body: %+v", got)
	}
}

func TestHTTPValidator_RejectionIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"ok":true,"message":"Coupon expired"}`))
	}))
	defer srv.Close()

	resp, err := NewHTTPValidator(srv.URL, time.Second).Validate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.OK || resp.Message != "Coupon expired" {
		t.Fatalf("4xx must be a rejection, got %+v", resp)
	}
}

func TestHTTPValidator_ServerErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPValidator(srv.URL, time.Second).Validate(context.Background(), sampleRequest())
	if !domain.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestHTTPValidator_NotConfigured(t *testing.T) {
	_, err := NewHTTPValidator("", time.Second).Validate(context.Background(), sampleRequest())
	if !domain.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestHTTPValidator_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewHTTPValidator(srv.URL, 20*time.Millisecond).Validate(context.Background(), sampleRequest())
	if !domain.IsUpstream(err) {
		t.Fatalf("expected upstream error on timeout, got %v", err)
	}
}
