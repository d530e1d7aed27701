package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	storesvc "github.com/aurumworks/jewelpos-backend/internal/stores"
	"github.com/aurumworks/jewelpos-backend/internal/users"
	"github.com/aurumworks/jewelpos-backend/pkg/config"
	"github.com/aurumworks/jewelpos-backend/pkg/db"
	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
	"github.com/aurumworks/jewelpos-backend/pkg/security"
)

// Bootstraps the first store and its manager account so a fresh deployment
// can log in.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	storeName := flag.String("store-name", "", "name of the store to create")
	storeAddress := flag.String("store-address", "", "store address printed on invoices")
	storePhone := flag.String("store-phone", "", "store phone printed on invoices")
	storeGSTIN := flag.String("store-gstin", "", "store GSTIN printed on invoices")
	username := flag.String("username", "", "manager username")
	password := flag.String("password", "", "manager password")
	flag.Parse()

	if *storeName == "" || *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -store-name NAME -username USER -password PASS [-store-address ...] [-store-phone ...] [-store-gstin ...]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	requireResource(logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(logg, "database", err)
	defer dbClient.Close()

	storeRepo := storesvc.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())

	store, err := storeRepo.Create(ctx, &models.Store{
		ID:      uuid.New(),
		Name:    *storeName,
		Address: *storeAddress,
		Phone:   *storePhone,
		GSTIN:   *storeGSTIN,
	})
	requireResource(logg, "store", err)

	hash, err := security.HashPassword(*password, cfg.Password)
	requireResource(logg, "password hash", err)

	manager, err := userRepo.Create(ctx, &models.User{
		ID:           uuid.New(),
		StoreID:      store.ID,
		Username:     strings.ToLower(strings.TrimSpace(*username)),
		PasswordHash: hash,
		Role:         "manager",
		IsActive:     true,
	})
	requireResource(logg, "manager user", err)

	logg.Info(logg.WithFields(ctx, map[string]any{
		"store_id": store.ID.String(),
		"user_id":  manager.ID.String(),
		"username": manager.Username,
	}), "seeded store and manager account")
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
