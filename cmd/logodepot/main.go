package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"logodepot/internal/blob"
	"logodepot/internal/cache"
	"logodepot/internal/catalog"
	"logodepot/internal/config"
	"logodepot/internal/server"
)

var version = "dev"

func Run(ctx context.Context) error {

	listen := flag.String("listen", ":8080", "HTTP listen address")
	dataDir := flag.String("data-dir", "./data", "directory for catalog, cache and uploads")
	storageKind := flag.String("storage", "cloudinary", "storage backend: cloudinary, s3 or local")
	cacheMaxBytes := flag.Int64("cache-max-bytes", 256<<20, "image cache size bound in bytes, 0 disables eviction")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")

	s3Endpoint := flag.String("s3-endpoint", "", "S3 endpoint host:port")
	s3Bucket := flag.String("s3-bucket", "tv-logos", "S3 bucket name")
	s3AccessKey := flag.String("s3-access-key", os.Getenv("S3_ACCESS_KEY"), "S3 access key")
	s3SecretKey := flag.String("s3-secret-key", os.Getenv("S3_SECRET_KEY"), "S3 secret key")
	s3Secure := flag.Bool("s3-secure", true, "use TLS for the S3 endpoint")

	showVersion := flag.Bool("version", false, "print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("logodepot %s\n", version)
		return nil
	}

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", *logLevel, err)
	}

	handler := log.NewWithOptions(os.Stdout, log.Options{
		Level:           level,
		TimeFormat:      time.RFC3339,
		ReportTimestamp: true,
		TimeFunction:    log.NowUTC,
		ReportCaller:    true,
	})

	slog.SetDefault(slog.New(handler))

	// Ensure data directory is absolute for easier debugging.
	absDataDir, err := filepath.Abs(*dataDir)
	if err != nil {
		return fmt.Errorf("failed to resolve data directory: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	store := catalog.Open(filepath.Join(absDataDir, "logos.json"))

	imageCache, err := cache.New(filepath.Join(absDataDir, "cache"), *cacheMaxBytes)
	if err != nil {
		return fmt.Errorf("failed to create image cache: %w", err)
	}

	var (
		backend blob.Backend
		creds   *config.Manager
	)

	switch *storageKind {
	case "cloudinary":
		creds, err = config.NewManager(filepath.Join(absDataDir, "config.json"))
		if err != nil {
			return fmt.Errorf("failed to create credentials manager: %w", err)
		}
		defer creds.Close()

		backend = blob.NewCloudinary(func() (blob.CloudinaryCredentials, bool) {
			c, ok := creds.Resolve()
			return blob.CloudinaryCredentials{CloudName: c.CloudName, APIKey: c.APIKey, APISecret: c.APISecret}, ok
		})

	case "s3":
		s3Backend, err := blob.NewS3(blob.S3Config{
			Endpoint:  *s3Endpoint,
			AccessKey: *s3AccessKey,
			SecretKey: *s3SecretKey,
			Bucket:    *s3Bucket,
			Prefix:    "tv-logos",
			Secure:    *s3Secure,
		})
		if err != nil {
			return fmt.Errorf("failed to create s3 backend: %w", err)
		}
		if err := s3Backend.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure s3 bucket: %w", err)
		}
		backend = s3Backend

	case "local":
		backend, err = blob.NewLocal(filepath.Join(absDataDir, "images"))
		if err != nil {
			return fmt.Errorf("failed to create local backend: %w", err)
		}

	default:
		return fmt.Errorf("unknown storage backend %q", *storageKind)
	}

	srv, err := server.New(server.Config{
		Store:       store,
		Backend:     backend,
		Cache:       imageCache,
		Credentials: creds,
		UploadDir:   filepath.Join(absDataDir, "uploads"),
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              *listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	eg.Go(func() error {
		slog.Info("Starting logo manager", "listen", *listen, "storage", *storageKind, "data_dir", absDataDir)
		err := httpServer.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	return eg.Wait()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		slog.Error("Logo manager exited with error", "error", err)
		os.Exit(1)
	}
}
