package coupon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tripquote/internal/domain"
)

// CategoryTransport is the service category tag sent for every trip quote.
const CategoryTransport = "transport"

const validatePath = "/coupons/validate"

// Request is the call contract of the external coupon validation service.
type Request struct {
	Category        string   `json:"category"`
	Code            string   `json:"code"`
	BaseTotal       float64  `json:"baseTotal"`
	Currency        string   `json:"currency,omitempty"`
	ServiceDateTime string   `json:"serviceDateTime"`
	ResourceID      int64    `json:"resourceId"`
	CategoryKeys    []string `json:"categoryKeys"`
	Email           string   `json:"email,omitempty"`

	// Fingerprint is the key of the quote the request was built for. It is
	// not sent; it scopes cache entries and coalesced calls.
	Fingerprint string `json:"-"`
}

// Response is the validation service answer.
type Response struct {
	OK             bool    `json:"ok"`
	CouponID       int64   `json:"couponId"`
	Code           string  `json:"code"`
	DiscountAmount float64 `json:"discountAmount"`
	BaseTotal      float64 `json:"baseTotal"`
	FinalTotal     float64 `json:"finalTotal"`
	PartnerID      string  `json:"partnerId,omitempty"`
	Message        string  `json:"message,omitempty"`
}

// Validator validates one coupon code against one quote.
type Validator interface {
	Validate(ctx context.Context, req Request) (Response, error)
}

// HTTPValidator calls the validation service over JSON/HTTP.
type HTTPValidator struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPValidator(baseURL string, timeout time.Duration) *HTTPValidator {
	return &HTTPValidator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Validate posts req. A 4xx answer with a JSON body is a rejection, not an
// error; transport failures and 5xx answers are UpstreamError.
func (v *HTTPValidator) Validate(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(v.BaseURL) == "" {
		return Response{}, domain.UpstreamError{Service: "coupon", Err: fmt.Errorf("coupon service url not configured")}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, v.BaseURL+validatePath, bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return Response{}, domain.UpstreamError{Service: "coupon", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Response{}, domain.UpstreamError{Service: "coupon", Err: err}
	}
	if resp.StatusCode >= 500 {
		return Response{}, domain.UpstreamError{Service: "coupon", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode >= 400 {
			return Response{OK: false, Message: http.StatusText(resp.StatusCode)}, nil
		}
		return Response{}, domain.UpstreamError{Service: "coupon", Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.StatusCode >= 400 {
		out.OK = false
	}
	return out, nil
}
