package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cbodonnell/landmark/pkg/api/handlers"
	"github.com/cbodonnell/landmark/pkg/api/middleware"
	authproviders "github.com/cbodonnell/landmark/pkg/auth/providers"
	"github.com/cbodonnell/landmark/pkg/log"
	"github.com/cbodonnell/landmark/pkg/store"
	"github.com/gorilla/mux"
)

// ErrUnverifiedAuthProvider is returned when the API would be served behind a
// provider that accepts any bearer string as a user id.
var ErrUnverifiedAuthProvider = errors.New("API requires an auth provider that verifies tokens")

// APIServer exposes a player's landmarks and last death over HTTP.
type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port         int
	TLS          *TLSConfig
	AuthProvider authproviders.AuthProvider
	Landmarks    store.LandmarkStore
	Deaths       store.DeathStore
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) (*APIServer, error) {
	if opts.AuthProvider == nil {
		return nil, ErrUnverifiedAuthProvider
	}
	if _, ok := opts.AuthProvider.(*authproviders.TrustedAuthProvider); ok {
		return nil, ErrUnverifiedAuthProvider
	}

	authMiddleware := middleware.NewAuthMiddleware(opts.AuthProvider, opts.Landmarks)

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	authed := router.NewRoute().Subrouter()
	authed.Use(corsMiddleware, authMiddleware)
	authed.HandleFunc("/landmarks", handlers.HandleListLandmarks(opts.Landmarks)).Methods(http.MethodGet)
	authed.HandleFunc("/landmarks/{name}", handlers.HandleGetLandmark(opts.Landmarks)).Methods(http.MethodGet)
	authed.HandleFunc("/landmarks/{name}", handlers.HandleDeleteLandmark(opts.Landmarks)).Methods(http.MethodDelete)
	authed.HandleFunc("/death", handlers.HandleGetLastDeath(opts.Deaths)).Methods(http.MethodGet)

	// preflight requests carry no credentials
	router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		w.WriteHeader(http.StatusNoContent)
	})

	return &APIServer{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		tls: opts.TLS,
	}, nil
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, DELETE")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		next.ServeHTTP(w, r)
	})
}

// Handler returns the HTTP handler serving the API.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
