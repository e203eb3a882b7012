package web

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/mealplan/internal/core"
	"github.com/JonMunkholm/mealplan/internal/web/middleware"
)

// callerOf returns the verified caller for r, anonymous when the request
// carried no valid token.
func callerOf(r *http.Request) core.Caller {
	return middleware.CallerFromContext(r.Context())
}

// collectionParam reads the {collection} path parameter.
func collectionParam(r *http.Request) core.CollectionKey {
	return core.CollectionKey(chi.URLParam(r, "collection"))
}

// clientIP is RemoteAddr without the port. TrustedRealIP has already
// replaced it for requests from trusted proxies.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
