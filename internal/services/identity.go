package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/taskflow-backend/internal/data/repos"
	"github.com/yungbote/taskflow-backend/internal/data/repos/user"
	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

// IdentityDirectory resolves handles and emails to users and owns role state.
// All methods honour dbc.Tx so lookups and role changes join the caller's
// transaction.
type IdentityDirectory interface {
	FindByHandle(dbc dbctx.Context, handle string) (*domain.User, error)
	FindByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.User, error)
	FindByEmail(dbc dbctx.Context, email string) (*domain.User, error)
	ResolveEmails(dbc dbctx.Context, op string, emails []string) ([]*domain.User, error)
	HasRole(dbc dbctx.Context, userID uuid.UUID, role string) (bool, error)
	AddRole(dbc dbctx.Context, userID uuid.UUID, role string) error
	RemoveRole(dbc dbctx.Context, userID uuid.UUID, role string) error
	TransitionRole(dbc dbctx.Context, userID uuid.UUID, from, to string) error
	DeleteUser(dbc dbctx.Context, userID uuid.UUID) error
	ListAllUsers(dbc dbctx.Context) ([]*domain.User, error)
}

type identityDirectory struct {
	log       *logger.Logger
	userRepo  repos.UserRepo
	roleRepo  repos.UserRoleRepo
	tokenRepo repos.UserTokenRepo
}

func NewIdentityDirectory(
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	roleRepo repos.UserRoleRepo,
	tokenRepo repos.UserTokenRepo,
) IdentityDirectory {
	return &identityDirectory{
		log:       baseLog.With("service", "IdentityDirectory"),
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		tokenRepo: tokenRepo,
	}
}

// FindByHandle returns nil without error when the handle is unknown.
func (d *identityDirectory) FindByHandle(dbc dbctx.Context, handle string) (*domain.User, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, nil
	}
	return d.userRepo.GetByUserName(dbc, handle)
}

func (d *identityDirectory) FindByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.User, error) {
	return d.userRepo.GetByIDs(dbc, ids)
}

// FindByEmail returns nil without error when the email is unknown.
func (d *identityDirectory) FindByEmail(dbc dbctx.Context, email string) (*domain.User, error) {
	users, err := d.userRepo.GetByEmails(dbc, []string{email})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

// ResolveEmails maps every email to a user, deduplicated, in input order.
// The first email without a user fails the whole call with MemberNotFound.
func (d *identityDirectory) ResolveEmails(dbc dbctx.Context, op string, emails []string) ([]*domain.User, error) {
	if len(emails) == 0 {
		return []*domain.User{}, nil
	}
	found, err := d.userRepo.GetByEmails(dbc, emails)
	if err != nil {
		return nil, fmt.Errorf("resolve emails: %w", err)
	}
	byEmail := make(map[string]*domain.User, len(found))
	for _, u := range found {
		byEmail[u.Email] = u
	}
	out := make([]*domain.User, 0, len(emails))
	seen := make(map[uuid.UUID]bool, len(emails))
	for _, raw := range emails {
		u, ok := byEmail[user.NormalizeEmail(raw)]
		if !ok {
			return nil, domain.MemberNotFound(op, strings.TrimSpace(raw))
		}
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u)
	}
	return out, nil
}

func (d *identityDirectory) HasRole(dbc dbctx.Context, userID uuid.UUID, role string) (bool, error) {
	return d.roleRepo.HasRole(dbc, userID, role)
}

func (d *identityDirectory) AddRole(dbc dbctx.Context, userID uuid.UUID, role string) error {
	return d.roleRepo.Add(dbc, userID, role)
}

func (d *identityDirectory) RemoveRole(dbc dbctx.Context, userID uuid.UUID, role string) error {
	return d.roleRepo.Remove(dbc, userID, role)
}

// TransitionRole swaps from for to. Run it inside a transaction so the user
// never holds both or neither.
func (d *identityDirectory) TransitionRole(dbc dbctx.Context, userID uuid.UUID, from, to string) error {
	if err := d.roleRepo.Remove(dbc, userID, from); err != nil {
		return fmt.Errorf("remove role %s: %w", from, err)
	}
	if err := d.roleRepo.Add(dbc, userID, to); err != nil {
		return fmt.Errorf("add role %s: %w", to, err)
	}
	d.log.Info("role transition", "user_id", userID, "from", from, "to", to)
	return nil
}

// DeleteUser removes the user row with its roles and tokens. Memberships and
// assignments are the caller's concern.
func (d *identityDirectory) DeleteUser(dbc dbctx.Context, userID uuid.UUID) error {
	ids := []uuid.UUID{userID}
	if err := d.roleRepo.FullDeleteByUserIDs(dbc, ids); err != nil {
		return fmt.Errorf("delete roles: %w", err)
	}
	if err := d.tokenRepo.FullDeleteByUserIDs(dbc, ids); err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return d.userRepo.FullDeleteByIDs(dbc, ids)
}

func (d *identityDirectory) ListAllUsers(dbc dbctx.Context) ([]*domain.User, error) {
	return d.userRepo.ListAll(dbc)
}
