package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"

	"github.com/fcacademy/academyweb/internal/admin"
	"github.com/fcacademy/academyweb/internal/db"
	"github.com/fcacademy/academyweb/pkg"
)

type seedEnv struct {
	DatabaseURL string `env:"ACADEMY_DATABASE_URL"`
	Password    string `env:"ACADEMY_SEED_PASSWORD"`
}

type accountStore interface {
	GetByUsername(ctx context.Context, username string) (*admin.Account, error)
	Create(ctx context.Context, username, passwordHash string) (*admin.Account, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	Count(ctx context.Context) (int, error)
}

func main() {
	username := flag.String("username", "", "admin username to create or reset")
	password := flag.String("password", "", "admin password (prefer ACADEMY_SEED_PASSWORD)")
	bcryptCost := flag.Int("cost", pkg.DefaultBcryptCost, "bcrypt cost")
	hashOnly := flag.Bool("hash", false, "only print the bcrypt hash of the password")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var env seedEnv
	if err := envconfig.Process(ctx, &env); err != nil {
		log.Fatalf("read env: %s", err)
	}
	if *password == "" {
		*password = env.Password
	}

	if *hashOnly {
		hash, err := pkg.HashPassword(*password, *bcryptCost)
		if err != nil {
			log.Fatalf("hash password: %s", err)
		}
		fmt.Println(hash)
		return
	}

	if env.DatabaseURL == "" {
		log.Fatalln("ACADEMY_DATABASE_URL not set")
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DatabaseURL: env.DatabaseURL,
		MaxConns:    1,
	})
	if err != nil {
		log.Fatalf("new db pool: %s", err)
	}
	defer dbPool.Close()

	result, err := seedAdmin(ctx, admin.NewRepo(dbPool), strings.TrimSpace(*username), *password, *bcryptCost)
	if err != nil {
		log.Errorf("seed admin: %s", err)
		dbPool.Close()
		os.Exit(1)
	}

	if result.Created {
		log.Printf("admin [%s] created, %d admin account(s) in total", *username, result.Total)
	} else {
		log.Printf("admin [%s] password reset, %d admin account(s) in total", *username, result.Total)
	}
}

type seedResult struct {
	Created bool
	Total   int
}

// seedAdmin creates the account, or resets its password when it already exists.
func seedAdmin(ctx context.Context, store accountStore, username, password string, bcryptCost int) (seedResult, error) {
	if err := admin.ValidateUsername(username); err != nil {
		return seedResult{}, err
	}
	if err := admin.ValidatePassword(password); err != nil {
		return seedResult{}, err
	}

	hash, err := pkg.HashPassword(password, bcryptCost)
	if err != nil {
		return seedResult{}, fmt.Errorf("hash password: %w", err)
	}

	var result seedResult
	account, err := store.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, admin.ErrAccountNotFound):
		if _, err := store.Create(ctx, username, hash); err != nil {
			return seedResult{}, fmt.Errorf("create admin: %w", err)
		}
		result.Created = true
	case err != nil:
		return seedResult{}, fmt.Errorf("get admin: %w", err)
	default:
		if err := store.UpdatePassword(ctx, account.ID, hash); err != nil {
			return seedResult{}, fmt.Errorf("update admin password: %w", err)
		}
	}

	result.Total, err = store.Count(ctx)
	if err != nil {
		return seedResult{}, fmt.Errorf("count admins: %w", err)
	}
	return result, nil
}
