package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agritrack/apiserver/config"
	"github.com/agritrack/apiserver/internal/db"
	"github.com/agritrack/apiserver/internal/events"
	"github.com/agritrack/apiserver/internal/handlers"
	"github.com/agritrack/apiserver/internal/mq"
	"github.com/agritrack/apiserver/internal/services"
	"github.com/agritrack/apiserver/internal/storage"
	"github.com/agritrack/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	uploads, err := newUploadStorage(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	broker, err := mq.Connect(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	publisher := events.NewPublisher(broker)

	userRepo := store.NewUserRepository(dbConn)
	farmerRepo := store.NewFarmerRepository(dbConn)
	farmRepo := store.NewFarmRepository(dbConn)
	cropRepo := store.NewCropRepository(dbConn)
	equipmentRepo := store.NewEquipmentRepository(dbConn)
	saleRepo := store.NewSaleRepository(dbConn)
	fertilizationRepo := store.NewFertilizationRepository(dbConn)

	userService := services.NewUserService(userRepo)
	farmerService := services.NewFarmerService(farmerRepo, publisher)
	farmService := services.NewFarmService(farmRepo, publisher)
	cropService := services.NewCropService(cropRepo, publisher)
	equipmentService := services.NewEquipmentService(equipmentRepo, publisher)
	saleService := services.NewSaleService(saleRepo, publisher)
	fertilizationService := services.NewFertilizationService(fertilizationRepo, publisher)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		handlers.CORS(cfg.CORSOrigin),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, uploads, jwtSecret)
	})
	router.Route("/api/users", func(r chi.Router) {
		handlers.UsersRouter(r, userService)
	})
	router.Route("/farmers", func(r chi.Router) {
		handlers.FarmerRouter(r, farmerService)
	})
	router.Route("/farms", func(r chi.Router) {
		handlers.FarmRouter(r, farmService)
	})
	router.Route("/crops", func(r chi.Router) {
		handlers.CropRouter(r, cropService)
	})
	router.Route("/equipment", func(r chi.Router) {
		handlers.EquipmentRouter(r, equipmentService)
	})
	router.Route("/sales", func(r chi.Router) {
		handlers.SaleRouter(r, saleService)
	})
	router.Route("/fertilization", func(r chi.Router) {
		handlers.FertilizationRouter(r, fertilizationService)
	})
	router.Route("/uploads", func(r chi.Router) {
		handlers.UploadsRouter(r, uploads)
	})
	if cfg.WebDir != "" {
		mountFrontend(router, cfg.WebDir)
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
	}, nil
}

// newUploadStorage selects and initializes the profile image backend.
func newUploadStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	var backend storage.ObjectStorage
	var err error

	switch cfg.Backend {
	case config.StorageBackendMinio:
		backend, err = storage.NewMinioClient(cfg.Minio)
	case config.StorageBackendGCS:
		backend, err = storage.NewGCSClient(ctx, cfg.GCS)
	case config.StorageBackendLocal, "":
		backend, err = storage.NewLocalClient(cfg.Local.Dir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err := backend.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return storage.NewStorage(backend), nil
}

// mountFrontend serves the built web app, falling back to index.html for
// client-side routes.
func mountFrontend(router *chi.Mux, dir string) {
	fileServer := http.FileServer(http.Dir(dir))
	router.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
