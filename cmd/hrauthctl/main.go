// Command hrauthctl is the administrative companion to the server. Ordinary
// principals self-register over HTTP; administrators are created here, out of
// band, by an operator with direct database access.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/mpetrenko/hrauth/internal/cli"
	"github.com/mpetrenko/hrauth/internal/common"
	"github.com/mpetrenko/hrauth/internal/server/auth/password"
	"github.com/mpetrenko/hrauth/internal/server/auth/token"
	"github.com/mpetrenko/hrauth/internal/server/config"
	"github.com/mpetrenko/hrauth/internal/server/models"
	"github.com/mpetrenko/hrauth/internal/server/repositories/repomanager"
	"github.com/mpetrenko/hrauth/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {

	ctx := context.Background()
	cfg := config.LoadConfig()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("db migration error: %w", err)
	}

	hashParams := password.DefaultParams()
	hashParams.Time = cfg.Argon2Time
	hashParams.Memory = cfg.Argon2Memory
	hashParams.Threads = cfg.Argon2Threads
	hasher, err := password.NewHasher(hashParams)
	if err != nil {
		return err
	}

	issuer, err := token.NewIssuer([]byte(cfg.SecretKey), cfg.AccessTokenValidity, cfg.ClockSkewLeeway)
	if err != nil {
		return err
	}

	svc := services.NewPrincipalService(db, m, hasher, issuer, cfg)

	reader := bufio.NewReader(os.Stdin)

	login, err := cli.GetSimpleText(reader, "Administrator login", os.Stdout)
	if err != nil {
		return err
	}
	email, err := cli.GetSimpleText(reader, "Administrator email", os.Stdout)
	if err != nil {
		return err
	}

	pw, err := cli.GetPassword("Enter password: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	pw2, err := cli.GetPassword("Repeat password: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw2)

	if string(pw) != string(pw2) {
		return errors.New("passwords do not match")
	}

	id, err := svc.Register(ctx, login, email, string(pw), models.RoleAdministrator)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorWeakPassword):
			return fmt.Errorf("password rejected: %w", err)
		case errors.Is(err, common.ErrorDuplicateIdentity):
			return fmt.Errorf("login or email already registered")
		default:
			return err
		}
	}

	fmt.Printf("Administrator created: %s (%s)\n", login, id)
	return nil
}
