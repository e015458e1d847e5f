package app

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
	"github.com/yungbote/taskflow-backend/internal/services"
)

// SeedFile lists accounts that must exist at startup, e.g. the first admin.
type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

type SeedUser struct {
	UserName  string   `yaml:"username"`
	Email     string   `yaml:"email"`
	FirstName string   `yaml:"first_name"`
	LastName  string   `yaml:"last_name"`
	Password  string   `yaml:"password"`
	Roles     []string `yaml:"roles"`
}

func parseSeed(raw []byte) (*SeedFile, error) {
	var f SeedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, u := range f.Users {
		if len(u.Roles) == 0 {
			f.Users[i].Roles = []string{domain.RoleUser}
		}
	}
	return &f, nil
}

// seedUsers creates every listed user that does not exist yet. Existing
// accounts are left untouched.
func seedUsers(ctx context.Context, log *logger.Logger, auth services.AuthService, path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	f, err := parseSeed(raw)
	if err != nil {
		return err
	}
	for _, u := range f.Users {
		got, err := auth.EnsureUser(ctx, services.RegisterInput{
			UserName:  u.UserName,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Password:  u.Password,
		}, u.Roles)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		log.Info("Seeded user", "user_id", got.ID, "roles", got.Roles)
	}
	return nil
}
