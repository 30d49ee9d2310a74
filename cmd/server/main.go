package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/joho/godotenv/autoload"

	"library/internal/config"
	"library/internal/content"
	"library/internal/gitenberg"
	"library/internal/library"
	"library/internal/logger"
	"library/internal/response"
	"library/internal/server"
	"library/internal/storage/fails"
	"library/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_, thisFile, _, _ := runtime.Caller(0)

	cfg, err := config.Load(config.FindConfigFile())
	if err != nil {
		slog.Error("Failed to load configuration: " + err.Error())
		os.Exit(1)
	}

	lvl, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	err = logger.SetupSLog(cfg.LogFormat, lvl, path.Dir(path.Dir(path.Dir(thisFile))), middleware.RequestIDKey)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	gh, err := gitenberg.NewClient(ctx, httpClient, gitenberg.Credentials{
		Token:        cfg.GitHubToken,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}, cfg.GitHubAPIURL, slog.Default())
	if err != nil {
		slog.Error("Failed to create GitHub client: " + err.Error())
		os.Exit(1)
	}

	org := cfg.Organization
	if name, err := gh.OrganizationName(ctx, org); err != nil {
		slog.Warn("Failed to resolve organization " + org + ", using it as is: " + err.Error())
	} else {
		org = name
	}

	var fr fails.Repository
	if cfg.FailsDSN != "" {
		var closer io.Closer
		fr, closer, err = fails.Open(ctx, cfg.FailsDSN, slog.Default())
		if err != nil {
			slog.Error("Failed to open failure journal: " + err.Error())
			os.Exit(1)
		}
		defer closer.Close()
	}

	classifier := &library.Classifier{
		Lister:       gh,
		Organization: org,
		RawBaseURL:   cfg.RawBaseURL,
		Logger:       slog.Default(),
	}

	searcher := &library.Searcher{
		Repositories: gh,
		Classifier:   classifier,
		Organization: org,
		Logger:       slog.Default(),
	}
	if fr != nil {
		searcher.Failures = fr
	}

	pages, err := web.Pages()
	if err != nil {
		slog.Error("Failed to parse page templates: " + err.Error())
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(server.LogRequests)
	r.Use(middleware.Recoverer)

	server.Stylesheets(r, web.Stylesheets())
	r.Mount("/", server.Handler(
		searcher,
		&library.Catalog{Repositories: gh, Classifier: classifier, Organization: org},
		&content.Fetcher{Client: httpClient, Logger: slog.Default()},
		fr,
		&response.Responder{DebugMode: cfg.DebugMode, Pages: pages},
		cfg.PublicURL,
	))

	srv := &http.Server{Addr: cfg.BindAddr, Handler: r}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shut down: " + err.Error())
		}
	}()

	slog.Info("Serving the Infinite Library of " + org + " on " + cfg.BindAddr)

	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		slog.Error("aborting: " + err.Error())
		os.Exit(1)
	}
}
