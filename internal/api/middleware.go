// Package api implements the menushare REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// EditorAuth guards the routes that change the menu or publish it. Viewer
// routes are mounted outside of it, so a shared menu and its live updates
// stay readable without a token.
//
// With enabled false every request is an editor request. Otherwise the
// request must carry "Authorization: Bearer <token>".
func EditorAuth(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		want := []byte(token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="menushare editor"`)
				writeJSON(w, http.StatusUnauthorized, errorBody("editing this menu requires a token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
