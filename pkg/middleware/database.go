package middleware

import (
	"net/http"

	"github.com/kinworks/kin-engine/pkg/database"
)

// DatabaseQuerier returns middleware that attaches the connection pool to the
// request context as the active querier. Repositories read it from there;
// transactional services swap it for a transaction via InTx.
func DatabaseQuerier(db *database.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(db.WithPool(r.Context())))
		})
	}
}
