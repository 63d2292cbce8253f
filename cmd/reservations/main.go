package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/config"
	httptransport "github.com/example/room-reservations/internal/http"
	"github.com/example/room-reservations/internal/logging"
	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/adapters"
	"github.com/example/room-reservations/internal/persistence/memory"
	"github.com/example/room-reservations/internal/persistence/postgres"
	"github.com/example/room-reservations/internal/persistence/sqlite"
	"github.com/example/room-reservations/internal/persistence/sqlite/migration"
)

const requestTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) > 0 && args[0] == "hash-admin-token" {
		return hashAdminToken(args[1:], stdin, stdout)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(stdout, cfg.LogLevel, cfg.LogFormat)

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "store", cfg.Store, "error", err)
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	handler, err := newHandler(cfg, store, logger)
	if err != nil {
		logger.Error("failed to build HTTP handler", "error", err)
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservations API listening", "addr", server.Addr, "store", cfg.Store)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		return err
	}
	logger.Info("reservations API stopped")
	return nil
}

// openStore connects to the configured backend and applies its schema.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory storage; reservations are lost on restart")
		return memory.New(), nil
	case config.StorePostgres:
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case config.StoreSQLite, "":
		store, err := sqlite.OpenWithConfig(migration.DefaultSQLiteConfig(cfg.SQLiteDSN), logger)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unsupported store %q", cfg.Store)
}

// newHandler wires the services over store and returns the HTTP entry point.
func newHandler(cfg config.Config, store persistence.Store, logger *slog.Logger) (http.Handler, error) {
	authenticator, err := application.NewAdminAuthenticator(cfg.AdminTokenHash)
	if err != nil {
		return nil, fmt.Errorf("invalid admin token hash: %w", err)
	}
	if authenticator.Open() {
		logger.Warn("no admin token hash configured; catalog changes are unrestricted")
	}

	repos := adapters.ForStore(store)
	now := time.Now

	var roomOpts []application.RoomServiceOption
	if cfg.RoomCacheTTL > 0 {
		roomOpts = append(roomOpts, application.WithRoomCache(cfg.RoomCacheTTL, 0))
	}
	roomService := application.NewRoomServiceWithLogger(repos.Rooms, repos.Equipment, now, logger, roomOpts...)
	equipmentService := application.NewEquipmentServiceWithLogger(repos.Equipment, nil, now, logger)
	equipmentService.OnChange(roomService.InvalidateCache)
	reservationService := application.NewReservationServiceWithLogger(roomService, repos.Reservations, nil, now, logger)
	roomService.UseReservations(reservationService)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Rooms:        httptransport.NewRoomHandler(roomService, logger),
		Equipment:    httptransport.NewEquipmentHandler(equipmentService, logger),
		Reservations: httptransport.NewReservationHandler(reservationService, roomService, logger),
		Health:       httptransport.NewHealthHandler(store, logger),
		Admin:        httptransport.RequireAdmin(authenticator, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequestTimeout(requestTimeout),
		},
	}), nil
}

// hashAdminToken prints the argon2id hash to put in RESERVATIONS_ADMIN_TOKEN_HASH.
// The token comes from the first argument or, when absent, the first line of stdin.
func hashAdminToken(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("hash-admin-token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	memoryKiB := fs.Uint("memory", uint(application.DefaultArgon2idParams.Memory), "argon2 memory in KiB")
	iterations := fs.Uint("iterations", uint(application.DefaultArgon2idParams.Iterations), "argon2 iterations")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("hash-admin-token: %w", err)
	}

	token := strings.TrimSpace(fs.Arg(0))
	if token == "" && stdin != nil {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("hash-admin-token: read token: %w", err)
		}
		token = strings.TrimSpace(line)
	}

	params := application.DefaultArgon2idParams
	params.Memory = uint32(*memoryKiB)
	params.Iterations = uint32(*iterations)

	hash, err := application.CreateTokenHash(token, params)
	if err != nil {
		return fmt.Errorf("hash-admin-token: %w", err)
	}
	_, err = fmt.Fprintln(stdout, hash)
	return err
}
