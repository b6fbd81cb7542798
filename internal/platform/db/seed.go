package db

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"okrplan/internal/platform/config"
)

// Seed provisions the admin login and the sentinel "Business as Usual" key
// result that ad-hoc check-in items attach to. Safe to run repeatedly.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	var userCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users").Scan(&userCount); err != nil {
		return err
	}
	if userCount == 0 {
		password := cfg.SeedAdminPassword
		if password == "" {
			password = "admin"
			log.Println("SEED_ADMIN_PASSWORD not set, using default admin password")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, `
      INSERT INTO users (email, password_hash, role)
      VALUES ($1, $2, 'admin')
    `, cfg.SeedAdminEmail, string(hashed)); err != nil {
			return err
		}
	}

	var bauCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM key_results WHERE LOWER(title) LIKE 'business as usual%'").Scan(&bauCount); err != nil {
		return err
	}
	if bauCount == 0 {
		var goalID string
		if err := pool.QueryRow(ctx, `
      INSERT INTO goals (title, quarter, status, progress)
      VALUES ('Business as Usual', 'All', 'active', 0)
      RETURNING id
    `).Scan(&goalID); err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, `
      INSERT INTO key_results (goal_id, title, status, progress)
      VALUES ($1, 'Business as Usual', 'active', 0)
    `, goalID); err != nil {
			return err
		}
	}

	return nil
}
