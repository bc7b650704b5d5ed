package quote

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/cedran/backend-frete/internal/common"
)

// Handler exposes the shipping-quote endpoint.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type quoteRequest struct {
	DestinationZipCode    string  `json:"destinationZipCode" validate:"required"`
	OriginZipCode         string  `json:"originZipCode"`
	SellerID              string  `json:"sellerId"`
	Page                  string  `json:"page"`
	AdditionalInformation string  `json:"additionalInformation"`
	SubtotalAmount        float64 `json:"subtotalAmount" validate:"gte=0"`
	DiscountAmount        float64 `json:"discountAmount"`
}

// QuoteShipping computes shipping offers for the cart in the URL. A neutral
// no-quote outcome returns an empty offer list, not an error.
func (h *Handler) QuoteShipping(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	cartID := chi.URLParam(r, "id")
	if cartID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "cart id required", nil)
		return
	}
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid quote request", err.Error())
			return
		}
	}

	discount := DiscountContext{SubtotalAmount: req.SubtotalAmount, DiscountAmount: req.DiscountAmount}
	if discount.SubtotalAmount == 0 && discount.DiscountAmount == 0 {
		if d, err := h.Svc.Cart.Discounts(r.Context(), cartID); err == nil {
			discount = d
		}
	}

	result, err := h.Svc.Quote(r.Context(), Request{
		CartID:                cartID,
		OriginZip:             req.OriginZipCode,
		DestinationZip:        req.DestinationZipCode,
		SellerID:              req.SellerID,
		PageName:              req.Page,
		AdditionalInformation: req.AdditionalInformation,
		Discount:              discount,
	})
	if err != nil {
		if errors.Is(err, ErrNoQuote) {
			common.JSON(w, http.StatusOK, map[string]any{"data": Result{Offers: []Offer{}}})
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to compute quote", nil)
		return
	}
	if result.Offers == nil {
		result.Offers = []Offer{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
