package handlers

import (
	"net/http"

	"tripquote/internal/http/middleware"
	"tripquote/internal/services"

	"github.com/gin-gonic/gin"
)

// QuoteHandler exposes QuoteService over HTTP.
type QuoteHandler struct {
	Service services.QuoteService
}

type couponQuoteRequest struct {
	services.QuoteRequest
	services.CouponQuery
}

func (h QuoteHandler) service(c *gin.Context) services.QuoteService {
	return h.Service.WithRequestID(middleware.GetRequestID(c))
}

// POST /api/quotes
func (h QuoteHandler) CreateQuote(c *gin.Context) {
	var req services.QuoteRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	trip, err := h.service(c).Quote(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// POST /api/quotes/coupon
func (h QuoteHandler) CreateCouponQuote(c *gin.Context) {
	var req couponQuoteRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	trip, err := h.service(c).QuoteWithCoupon(c.Request.Context(), req.QuoteRequest, req.CouponQuery, middleware.GetIdentity(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// POST /api/quotes/pdf
func (h QuoteHandler) QuoteSheetPDF(c *gin.Context) {
	var req couponQuoteRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	pdfBytes, filename, err := h.service(c).QuoteSheet(c.Request.Context(), req.QuoteRequest, req.CouponQuery, middleware.GetIdentity(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
