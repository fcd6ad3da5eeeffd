package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// New builds the service's HTTP handler: JWKS is fetched once up front, and
// every route is guarded by claim validation and a shared mutex that
// serializes uploads and regenerations against each other.
func New(ctx context.Context, cfg Config) (http.Handler, error) {
	set, err := fetchJWKS(ctx, cfg.Server.JWKSURL)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(claimValidator(set, cfg.Server.Audiences, cfg.Server.Issuer))

	r.Post("/upload", lockUploads(&mu, UploadHandler(cfg.Server)))
	r.Post("/regenerate", RegenerateHandler(cfg.Server, &mu))

	return r, nil
}

// lockUploads serializes uploads-to-storage against any in-flight
// regeneration so the generator never walks a partially-written storage
// directory.
func lockUploads(mu *sync.Mutex, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		next(w, r)
	}
}
