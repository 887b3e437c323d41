package main

import (
	"context"
	"net/http"
	"time"

	"bookshelf/internal/auth"
	"bookshelf/internal/book"
	"bookshelf/internal/collection"
	"bookshelf/internal/config"
	"bookshelf/internal/httpx"
	"bookshelf/internal/metadata"
	"bookshelf/internal/metrics"
	"bookshelf/internal/platform/breaker"
	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/platform/openlibrary"
	"bookshelf/internal/profile"
	"bookshelf/internal/store"
	"bookshelf/internal/user"
)

// newServer wires services and handlers onto the router and wraps it in the
// middleware stack.
func newServer(cfg config.Config, repos store.Repositories, rateLimiter *httpx.RateLimitMiddleware) http.Handler {
	userService := user.NewService(repos.Users)
	authService := auth.NewService(cfg.JWTSecret, cfg.TokenTTL, userService)
	collectionService := collection.NewService(repos.Collection)
	profileService := profile.NewService(userService, collectionService)
	bookService := book.NewService(repos.Books, cfg.BooksMaxPerUser)

	resolver := metadata.NewResolver(
		metadata.NewOpenLibraryAdapter(openlibrary.NewClient(cfg.OpenLibraryURL, breaker.NewClient("openlibrary", 10*time.Second))),
		metadata.NewGoogleBooksAdapter(googlebooks.NewClient(cfg.GoogleBooksURL, breaker.NewClient("googlebooks", 10*time.Second))),
		metadata.NewLocalAdapter(bookService, cfg.PublicURL),
	)

	authHandler := auth.NewHTTPHandler(authService)
	profileHandler := profile.NewHTTPHandler(profileService)
	collectionHandler := collection.NewHTTPHandler(collectionService)
	bookHandler := book.NewHTTPHandler(bookService)
	metadataHandler := metadata.NewHTTPHandler(resolver)

	protected := httpx.AuthMiddleware(cfg.JWTSecret)
	withAuth := func(h http.HandlerFunc) http.Handler { return protected(h) }

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := repos.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("GET /metrics", metrics.Handler())

	router.HandleFunc("POST /register", authHandler.Register)
	router.HandleFunc("POST /login", authHandler.Login)

	router.Handle("GET /profile", withAuth(profileHandler.Get))

	router.Handle("GET /collection", withAuth(collectionHandler.List))
	router.Handle("POST /collection", withAuth(collectionHandler.Add))
	router.Handle("PUT /collection/{isbn}", withAuth(collectionHandler.Update))
	router.Handle("DELETE /collection/{isbn}", withAuth(collectionHandler.Remove))

	router.HandleFunc("GET /search", bookHandler.Search)
	router.HandleFunc("GET /books/{id}", bookHandler.Get)
	router.Handle("POST /books", withAuth(bookHandler.Create))

	router.HandleFunc("GET /metadata/{provider}/{identifier}", metadataHandler.Get)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSOrigins),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)
}
