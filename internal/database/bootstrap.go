package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/alialmasri-information-technology/restaurant-management/internal/enum"
)

// defaultUsers are seeded on first run so someone can log in to each role
// view. Passwords must be rotated before the terminal goes live.
var defaultUsers = []struct {
	Username string
	Password string
	Role     string
	FullName string
}{
	{"admin", "admin123", enum.RoleAdmin, "Administrator"},
	{"waiter1", "waiter123", enum.RoleWaiter, "John Doe"},
	{"cashier1", "cashier123", enum.RoleCashier, "Jane Smith"},
}

// SeedDefaultUsers inserts the three default accounts if the users table is
// empty. All three land in one transaction or none do.
func SeedDefaultUsers(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	q := New(tx)

	count, err := q.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, u := range defaultUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Username, err)
		}
		if _, err := q.CreateUser(ctx, CreateUserParams{
			Username:       u.Username,
			HashedPassword: string(hash),
			Role:           u.Role,
			FullName:       u.FullName,
		}); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Println("WARNING: seeded default accounts (admin/waiter1/cashier1) with default passwords. Change them immediately!")
	return nil
}
