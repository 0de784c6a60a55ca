package middleware

import (
	"net/http"
	"time"

	"instructor-portal/pkg/utils"
)

// CartSession makes sure every request carries a cart id, issuing a cookie when missing.
func CartSession(maxAge time.Duration, cookieSecure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cartID := utils.CookieValue(r, utils.CartCookie)
			if !utils.IsValidCartID(cartID) {
				cartID = utils.GenerateCartID()
			}
			// refresh expiry on every visit
			utils.SetCartCookie(w, cartID, maxAge, cookieSecure)

			ctx := utils.SetCartIDContext(r.Context(), cartID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
