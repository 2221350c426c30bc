package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	identityapp "github.com/storeadmin/backend/internal/application/identity"
	"github.com/storeadmin/backend/internal/infrastructure/auth"
	"github.com/storeadmin/backend/internal/infrastructure/config"
	"github.com/storeadmin/backend/internal/infrastructure/docstore"
	"github.com/storeadmin/backend/internal/infrastructure/logger"
	"github.com/storeadmin/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// bootstrapActor creates the first admin; no signed-in admin exists yet
var bootstrapActor = identityapp.Principal{UID: "bootstrap", SuperAdmin: true}

func main() {
	var (
		logLevel    string
		email       string
		password    string
		displayName string
		superAdmin  bool
	)
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&email, "email", "", "Admin email (create-admin)")
	flag.StringVar(&password, "password", "", "Admin password, at least 6 characters (create-admin)")
	flag.StringVar(&displayName, "name", "Administrator", "Admin display name (create-admin)")
	flag.BoolVar(&superAdmin, "super", true, "Grant the super admin flag (create-admin)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	logCfg := logger.DefaultConfig()
	logCfg.Level = logLevel
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch command {
	case "migrate":
		db := openDatabase(cfg, log)
		defer func() {
			_ = db.Close()
		}()
		log.Info("Identity tables are up to date", zap.String("driver", cfg.Database.Driver))

	case "create-admin":
		provider, closeProvider := identityProvider(ctx, cfg, log)
		defer closeProvider()

		store, err := docstore.New(ctx, &cfg.DocStore, log)
		if err != nil {
			log.Fatal("Failed to open document store", zap.Error(err))
		}
		defer func() {
			_ = store.Close()
		}()

		adminService := identityapp.NewAdminService(provider, persistence.NewDocAdminRepository(store, log), log)
		admin, err := adminService.Create(ctx, bootstrapActor, identityapp.CreateAdminRequest{
			DisplayName: displayName,
			Email:       email,
			Password:    password,
			SuperAdmin:  superAdmin,
		})
		if err != nil {
			log.Fatal("Failed to create admin", zap.Error(err))
		}
		log.Info("Admin created",
			zap.String("id", admin.ID),
			zap.String("email", admin.Email),
			zap.Bool("super_admin", admin.SuperAdmin),
		)

	default:
		printUsage()
		os.Exit(1)
	}
}

// openDatabase connects to the identity database and migrates its tables
func openDatabase(cfg *config.Config, log *zap.Logger) *persistence.Database {
	db, err := persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel("warn")))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	return db
}

func identityProvider(ctx context.Context, cfg *config.Config, log *zap.Logger) (auth.IdentityProvider, func()) {
	if cfg.Identity.Driver == "firebase" {
		provider, err := auth.NewFirebaseProvider(ctx, &cfg.Identity, log)
		if err != nil {
			log.Fatal("Failed to initialize Firebase identity provider", zap.Error(err))
		}
		return provider, func() {}
	}
	db := openDatabase(cfg, log)
	provider := auth.NewLocalProvider(
		persistence.NewGormCredentialRepository(db.DB),
		auth.NewTokenService(cfg.JWT),
		auth.NewInMemoryRevocationList(),
		log,
	)
	return provider, func() {
		_ = db.Close()
	}
}

func printUsage() {
	fmt.Println(`Store admin maintenance CLI

Usage:
  admin [flags] <command>

Commands:
  migrate        Create or update the identity database tables
  create-admin   Create an admin account and its admin record

Flags:
  -email string      Admin email (create-admin)
  -password string   Admin password (create-admin)
  -name string       Admin display name (default "Administrator")
  -super             Grant the super admin flag (default true)
  -log-level string  Log level (default "info")

Examples:
  admin migrate
  admin -email owner@shop.lk -password s3cret! create-admin`)
}
