package api

import (
	"net/http"

	"pickupstand/internal/domain"
)

// ShopHeader is the header the embedded admin UI sends to scope every
// API call to one shop.
const ShopHeader = "X-Shop-Domain"

// RequireShop rejects API requests without a shop header and puts the
// shop domain on the request context for handlers downstream.
func RequireShop(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shop := r.Header.Get(ShopHeader)
		if shop == "" {
			writeError(w, http.StatusBadRequest, ShopHeader+" header is required")
			return
		}
		ctx := domain.WithShopDomain(r.Context(), shop)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// shopFrom reads the shop domain the middleware stored.
func shopFrom(r *http.Request) string {
	return domain.GetShopDomainFromContext(r.Context())
}
