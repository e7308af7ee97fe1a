// package main provides a command line interface for starting the task
// backend's REST API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	firebase "firebase.google.com/go/v4"
	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/Binwin6724/todo-calender-be/auth"
	"github.com/Binwin6724/todo-calender-be/avatar"
	"github.com/Binwin6724/todo-calender-be/log"
	"github.com/Binwin6724/todo-calender-be/mem"
	"github.com/Binwin6724/todo-calender-be/mongodb"
	"github.com/Binwin6724/todo-calender-be/pg"
	"github.com/Binwin6724/todo-calender-be/prom"
	"github.com/Binwin6724/todo-calender-be/rest"
	"github.com/Binwin6724/todo-calender-be/service"
)

func main() {
	// A missing .env is fine; the environment may be set some other way.
	_ = godotenv.Load()

	var (
		authKind      = flag.String("auth", envOr("AUTH_PROVIDER", "google"), "identity provider that issues bearer tokens: google or firebase")
		clientID      = flag.String("client-id", os.Getenv("GOOGLE_CLIENT_ID"), "OAuth client ID that Google ID tokens must be issued for")
		corsOrigins   = flag.String("cors-origins", envOr("CORS_ORIGINS", "http://localhost:3000"), "comma-separated list of request origins where CORS requests are allowed")
		dbName        = flag.String("db-name", envOr("DB_NAME", "todo-calendar"), "database name, for mongodb:// URLs without one")
		dbURL         = flag.String("db", os.Getenv("DB"), "database URL: postgres://, mongodb:// or memory:// (volatile, for development)")
		environment   = flag.String("environment", os.Getenv("ENV"), "development or production, controls log verbosity")
		projectID     = flag.String("project-id", os.Getenv("FIREBASE_PROJECT_ID"), "the firebase project-id used for auth")
		port          = flag.Int("port", envInt("PORT", 5000), "the port where the REST API listens for connections")
		imageBaseURL  = flag.String("image-base-url", os.Getenv("IMAGE_BASE_URL"), "URL prefix for stored profile image links; empty for host-relative links")
		imageTimeout  = flag.Duration("image-timeout", service.DefaultImageTimeout, "time limit for one profile image download")
		imageFetches  = flag.Int("image-fetches", service.DefaultMaxImageFetches, "maximum concurrent profile image downloads")
		imageMaxBytes = flag.Int64("image-max-bytes", avatar.DefaultMaxBytes, "largest profile image that will be stored")
	)
	flag.Parse()

	ctx := context.Background()

	var logger *zap.Logger
	var err error
	if *environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	svc := &service.Service{
		ImageFetcher: &avatar.Client{
			HTTP:     &http.Client{Timeout: *imageTimeout},
			MaxBytes: *imageMaxBytes,
		},
		ImageTimeout:    *imageTimeout,
		MaxImageFetches: *imageFetches,
		ImageBaseURL:    strings.TrimSuffix(*imageBaseURL, "/"),
	}

	closeDB, err := openStores(ctx, svc, *dbURL, *dbName)
	if err != nil {
		logger.Fatal("open database failed", zap.Error(err))
	}
	defer closeDB()
	if svc.Ping == nil {
		logger.Warn("using in-memory storage; data is lost on restart")
	}

	switch *authKind {
	case "google":
		if *clientID == "" {
			logger.Fatal("missing client-id")
		}
		svc.Auth = &auth.GoogleProvider{Audience: *clientID}

	case "firebase":
		firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{
			ProjectID: *projectID,
		})
		if err != nil {
			logger.Fatal("init firebase failed", zap.Error(err))
		}
		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			logger.Fatal("init firebase failed", zap.Error(err))
		}
		svc.Auth = &auth.FirebaseProvider{AuthClient: authClient}

	default:
		logger.Fatal("unknown auth provider", zap.String("auth", *authKind))
	}

	var handler http.Handler
	handler = rest.New(svc)
	handler = log.WrapHandler(handler, logger)
	handler = handlers.CORS(
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedOrigins(splitList(*corsOrigins)),
		handlers.AllowCredentials(),
	)(handler)

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/metrics", prom.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprint(":", *port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("db", redact(*dbURL)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	svc.Wait()
}

var errNoDatabase = errors.New("no database configured: set -db or DB, or memory:// for volatile storage")

// openStores connects the backend named by dbURL's scheme and installs its
// stores in svc. The returned func releases the connection.
func openStores(ctx context.Context, svc *service.Service, dbURL, dbName string) (func(), error) {
	if dbURL == "" {
		return nil, errNoDatabase
	}

	u, err := url.Parse(dbURL)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		db, err := sql.Open("postgres", dbURL)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(10)

		if err := pg.Init(ctx, db); err != nil {
			db.Close()
			return nil, err
		}

		svc.TaskStore = &pg.TaskStore{DB: db}
		svc.CompletionStore = &pg.CompletionStore{DB: db}
		svc.UserStore = &pg.UserStore{DB: db}
		svc.Ping = db.PingContext
		return func() { db.Close() }, nil

	case "mongodb", "mongodb+srv":
		client, err := mongodb.Connect(ctx, dbURL, mongodb.DefaultOptions)
		if err != nil {
			return nil, err
		}

		if name := strings.TrimPrefix(u.Path, "/"); name != "" {
			dbName = name
		}
		db := client.Database(dbName)
		if err := mongodb.Init(ctx, db); err != nil {
			client.Disconnect(ctx)
			return nil, err
		}

		svc.TaskStore = &mongodb.TaskStore{DB: db}
		svc.CompletionStore = &mongodb.CompletionStore{DB: db}
		svc.UserStore = &mongodb.UserStore{DB: db}
		svc.Ping = mongodb.Ping(client)
		return func() { client.Disconnect(context.Background()) }, nil

	case "memory":
		svc.TaskStore = &mem.TaskStore{}
		svc.CompletionStore = &mem.CompletionStore{}
		svc.UserStore = &mem.UserStore{}
		return func() {}, nil
	}

	return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// redact drops credentials from a database URL for logging.
func redact(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return ""
	}
	return u.Redacted()
}
