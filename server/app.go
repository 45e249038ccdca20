package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"fleet/config"
	"fleet/internal/db"
	"fleet/internal/gql"
	"fleet/internal/health"
	"fleet/internal/logs"
	"fleet/internal/middleware"
	"fleet/internal/repo"
	"fleet/internal/reqctx"
	"fleet/internal/secrets"
)

// AppName попадает в iss выдаваемых токенов.
const AppName = "fleet"

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	Router     *mux.Router
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

// OpenDB открывает БД из конфига и при DB_AUTOMIGRATE создаёт таблицы.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	d, err := db.Open(cfg.Database.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("db open failed: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(d); err != nil {
			_ = db.Close(d)
			return nil, fmt.Errorf("db migrate failed: %w", err)
		}
	}
	return d, nil
}

// NewStore — слой данных с настройками токенов и паролей из конфига.
func NewStore(cfg *config.Config, d *gorm.DB) *repo.Store {
	opts := repo.Options{
		AppName:   AppName,
		Audience:  cfg.Address(),
		Secret:    cfg.JWT.Secret,
		ExpiresIn: cfg.TokenTTL(),
	}
	if cfg.Auth.VerifyPasswords {
		opts.Passwords = secrets.New(repo.NewCredentialStore(d))
	}
	return repo.NewStore(d, opts)
}

func (a *App) Initialize(cfg *config.Config) error {
	a.cfg = cfg

	/* 1) Логи */
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.LogFormat(),
		File:   a.cfg.Logging.File,
	})

	/* 2) DB */
	d, err := OpenDB(a.cfg)
	if err != nil {
		return err
	}
	a.db = d

	/* 3) GraphQL */
	store := NewStore(a.cfg, a.db)
	schema, err := gql.NewSchema(store)
	if err != nil {
		return err
	}
	handler := gql.NewHandler(schema, &reqctx.Builder{Source: store, Secret: a.cfg.JWT.Secret})

	/* 4) Router + middleware */
	a.Router = NewRouter(handler, a.db)

	/* вывести известные маршруты в лог при старте */
	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			methods = []string{"ANY"}
		}
		logs.Logger.Debugf("route: %-6v %s", methods, path)
		return nil
	})
	return nil
}

// NewRouter собирает маршруты: /graphql, /healthz, /readyz.
func NewRouter(graphql http.Handler, d *gorm.DB) *mux.Router {
	r := mux.NewRouter().StrictSlash(true)
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.LoggerMW,
	)
	health.RegisterRoutes(r, d)
	r.Handle("/graphql", graphql).Methods(http.MethodGet, http.MethodPost)
	return r
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}
	defer func() {
		if err := db.Close(a.db); err != nil {
			logs.Logger.Errorf("db close: %v", err)
		}
	}()

	bind := a.cfg.Address()

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case s := <-sigs:
			logs.Logger.Infof("shutdown signal: %s", s)
			a.cancel()
		case <-a.ctx.Done():
		}
	}()

	a.httpServer = &http.Server{
		Addr:              bind,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logs.Logger.Infof("GraphQL listening on http://%s/graphql", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			a.cancel()
			return fmt.Errorf("http server error: %w", err)
		}
	case <-a.ctx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}
	return nil
}
