// bootstrap creates the single superadmin. Run once per deployment:
//
//	go run ./cmd/bootstrap -username root -password '...'
//	go run ./cmd/bootstrap root '...'
//
// BOOTSTRAP_PASSWORD is read when -password is omitted, so the secret stays out of shell history.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"event-raffle/backend/internal/admin/domain"
	adminrepo "event-raffle/backend/internal/admin/repository"
	adminservice "event-raffle/backend/internal/admin/service"
	"event-raffle/backend/internal/config"
	"event-raffle/backend/internal/db"
	"event-raffle/backend/internal/db/migrate"
	"event-raffle/backend/internal/security"
)

func main() {
	username := flag.String("username", "", "Superadmin username")
	password := flag.String("password", "", "Superadmin password (default $BOOTSTRAP_PASSWORD)")
	runMigrations := flag.Bool("migrate", true, "Apply pending migrations first")
	flag.Parse()

	u, p := resolveCredentials(*username, *password, flag.Args(), os.Getenv("BOOTSTRAP_PASSWORD"))
	if u == "" || p == "" {
		fmt.Fprintln(os.Stderr, "Usage: bootstrap -username <username> -password <password>")
		os.Exit(1)
	}

	dsn := config.DatabaseURL()
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; create a .env or set DATABASE_URL")
		os.Exit(1)
	}
	if *runMigrations {
		if err := migrate.Run(dsn, "up"); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, dsn)
	if err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer conn.Close()

	svc := adminservice.NewAdminService(adminrepo.NewPostgresRepository(conn), security.NewHasher(config.BcryptCostOrDefault()), nil)
	a, err := svc.BootstrapSuperadmin(ctx, u, p)
	if err != nil {
		fmt.Fprintln(os.Stderr, describe(err, u))
		conn.Close()
		os.Exit(1)
	}
	fmt.Printf("Superadmin %q created successfully.\n", a.Username)
}

// resolveCredentials prefers flags, then positional arguments, then the environment password.
func resolveCredentials(username, password string, args []string, envPassword string) (string, string) {
	if username == "" && len(args) > 0 {
		username = args[0]
	}
	if password == "" && len(args) > 1 {
		password = args[1]
	}
	if password == "" {
		password = envPassword
	}
	return strings.TrimSpace(username), password
}

func describe(err error, username string) string {
	switch {
	case errors.Is(err, adminservice.ErrAlreadyBootstrapped):
		return "A superadmin already exists. New admin accounts must be created by the superadmin from the dashboard."
	case errors.Is(err, domain.ErrDuplicateUsername):
		return fmt.Sprintf("Admin user %q already exists.", username)
	case errors.Is(err, adminservice.ErrWeakPassword),
		errors.Is(err, adminservice.ErrPasswordTooLong),
		errors.Is(err, domain.ErrInvalidUsername):
		return err.Error()
	default:
		return "Failed to create admin user: " + err.Error()
	}
}
