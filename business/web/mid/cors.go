package mid

import (
	"context"
	"net/http"
	"slices"

	"github.com/ardanlabs/cryptochain/foundation/web"
)

// Cors sets the response headers needed for Cross-Origin Resource Sharing.
// The origin of the request is echoed back when it's one of the allowed
// origins. An allowed origin of "*" accepts any origin.
func Cors(origins ...string) web.Middleware {
	wildcard := slices.Contains(origins, "*")

	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			switch origin := r.Header.Get("Origin"); {
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case slices.Contains(origins, origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, Content-Length, Accept-Encoding")
			w.Header().Set("Access-Control-Max-Age", "86400")

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
