package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures cross-origin resource sharing.
type CORSConfig struct {
	// AllowOrigins lists origins permitted to make cross-origin requests.
	// Empty, or a single "*", allows any origin.
	AllowOrigins []string

	// AllowMethods lists permitted methods for preflight responses.
	// Defaults to the methods the API actually serves.
	AllowMethods []string

	// AllowHeaders lists permitted request headers. When empty, the headers
	// named in the preflight request are echoed back.
	AllowHeaders []string

	// AllowCredentials permits cookies and authorization headers on
	// cross-origin requests. Incompatible with the wildcard origin: when set,
	// the matched origin is echoed instead of "*".
	AllowCredentials bool

	// MaxAge is how long, in seconds, browsers may cache preflight results.
	MaxAge int
}

// CORS returns a middleware implementing the CORS protocol: it answers
// preflight OPTIONS requests and decorates actual responses with the
// appropriate Access-Control headers. Responses vary on Origin so shared
// caches never serve one origin's headers to another.
func CORS(cfg CORSConfig) Middleware {
	origins := make(map[string]struct{}, len(cfg.AllowOrigins))
	wildcard := len(cfg.AllowOrigins) == 0
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			wildcard = true
			continue
		}
		origins[strings.ToLower(o)] = struct{}{}
	}
	// The protocol forbids "*" together with credentials.
	if cfg.AllowCredentials {
		wildcard = false
	}

	methods := strings.Join(cfg.AllowMethods, ", ")
	if methods == "" {
		methods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	headers := strings.Join(cfg.AllowHeaders, ", ")

	allowFor := func(origin string) string {
		if wildcard {
			return "*"
		}
		if _, ok := origins[strings.ToLower(origin)]; ok {
			return origin
		}
		return ""
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			hdr := w.Header()
			hdr.Add("Vary", "Origin")
			allow := allowFor(origin)

			// Preflight request.
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				hdr.Add("Vary", "Access-Control-Request-Method")
				hdr.Add("Vary", "Access-Control-Request-Headers")

				if allow != "" {
					hdr.Set("Access-Control-Allow-Origin", allow)
					hdr.Set("Access-Control-Allow-Methods", methods)
					if headers != "" {
						hdr.Set("Access-Control-Allow-Headers", headers)
					} else if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
						hdr.Set("Access-Control-Allow-Headers", requested)
					}
					if cfg.AllowCredentials {
						hdr.Set("Access-Control-Allow-Credentials", "true")
					}
					if cfg.MaxAge > 0 {
						hdr.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if allow != "" {
				hdr.Set("Access-Control-Allow-Origin", allow)
				if cfg.AllowCredentials {
					hdr.Set("Access-Control-Allow-Credentials", "true")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
