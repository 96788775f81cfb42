package scylla

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"tryout-service/internal/model"
	"tryout-service/internal/util"
)

// AdminRepository stores admin accounts keyed by username.
type AdminRepository struct {
	client *ScyllaClient
}

func NewAdminRepository(client *ScyllaClient) *AdminRepository {
	return &AdminRepository{client: client}
}

// CreateAdmin inserts a new admin account. The LWT insert rejects duplicate
// usernames.
func (r *AdminRepository) CreateAdmin(a *model.AdminUser) error {
	a.CreatedAt = time.Now().UTC()

	applied, err := r.client.Query(
		`INSERT INTO admin_users (username, password_hash, role, created_at)
         VALUES (?, ?, ?, ?) IF NOT EXISTS`,
		a.Username, a.PasswordHash, a.Role, a.CreatedAt,
	).MapScanCAS(map[string]interface{}{})
	if err != nil {
		util.Error("Failed to create admin user",
			util.String("username", a.Username),
			util.ErrorField(err))
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	if !applied {
		return ErrAlreadyExists
	}

	util.Info("Admin user created",
		util.String("username", a.Username),
		util.String("role", a.Role))
	return nil
}

func (r *AdminRepository) GetAdmin(username string) (*model.AdminUser, error) {
	a := &model.AdminUser{}

	err := r.client.Query(
		`SELECT username, password_hash, role, created_at
         FROM admin_users WHERE username = ?`, username,
	).Scan(&a.Username, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, ErrNotFound
		}
		util.Error("Failed to load admin user",
			util.String("username", username),
			util.ErrorField(err))
		return nil, fmt.Errorf("failed to load admin user: %w", err)
	}

	return a, nil
}
