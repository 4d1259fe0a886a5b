package inspect

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// NewServer builds the inspect HTTP server listening on addr
func NewServer(addr string, view SessionView) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: NewHandler(view),
	}
}

// NewHandler returns the routed, CORS-wrapped handler
func NewHandler(view SessionView) http.Handler {
	mux := http.NewServeMux()

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	NewStateHandler(view).RegisterRoutes(mux)
	setupHealthCheck(mux)

	return h2c.NewHandler(c.Handler(mux), &http2.Server{})
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
