package security

import "net/http"

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	AllowOrigin  string
	AllowMethods string
	AllowHeaders string
}

// DefaultCORSConfig allows any origin, matching the API's public
// browser-client use.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigin:  "*",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
		AllowHeaders: "Authorization, Content-Type",
	}
}

// CORSMiddleware sets CORS headers and short-circuits preflight requests.
func CORSMiddleware(config CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			headers.Set("Access-Control-Allow-Origin", config.AllowOrigin)
			headers.Set("Access-Control-Allow-Methods", config.AllowMethods)
			headers.Set("Access-Control-Allow-Headers", config.AllowHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
