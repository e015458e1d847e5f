package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/taskflow-backend/internal/data/aggregates"
	"github.com/yungbote/taskflow-backend/internal/data/repos"
	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/ctxutil"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

type RegisterInput struct {
	UserName  string `json:"user_name" validate:"required,max=64"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

func (in *RegisterInput) normalize() {
	in.UserName = strings.TrimSpace(in.UserName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type JWTClaims struct {
	UserName string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*UserSummary, error)
	EnsureUser(ctx context.Context, in RegisterInput, roles []string) (*UserSummary, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context) error
	Authenticate(ctx context.Context, tokenString string) (context.Context, error)
	Me(ctx context.Context) (*UserSummary, error)
	AccessTTL() time.Duration
}

type authService struct {
	deps         aggregates.BaseDeps
	log          *logger.Logger
	identity     IdentityDirectory
	userRepo     repos.UserRepo
	tokenRepo    repos.UserTokenRepo
	jwtSecretKey string
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

func NewAuthService(
	deps aggregates.BaseDeps,
	baseLog *logger.Logger,
	identity IdentityDirectory,
	userRepo repos.UserRepo,
	tokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	return &authService{
		deps:         deps,
		log:          serviceLog,
		identity:     identity,
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*UserSummary, error) {
	const op = "auth.register"
	var out *UserSummary
	err := aggregates.Write(ctx, as.deps, op, func(dbc dbctx.Context) error {
		u, err := as.createUser(dbc, op, in, []string{domain.RoleUser})
		if err != nil {
			return err
		}
		out = newUserSummary(u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("user registered", "user_id", out.ID)
	return out, nil
}

// EnsureUser creates the user with roles unless the email is already taken,
// in which case the existing user is returned unchanged.
func (as *authService) EnsureUser(ctx context.Context, in RegisterInput, roles []string) (*UserSummary, error) {
	const op = "auth.ensure_user"
	if len(roles) == 0 {
		roles = []string{domain.RoleUser}
	}
	var out *UserSummary
	err := aggregates.Write(ctx, as.deps, op, func(dbc dbctx.Context) error {
		existing, err := as.identity.FindByEmail(dbc, in.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			out = newUserSummary(existing)
			return nil
		}
		u, err := as.createUser(dbc, op, in, roles)
		if err != nil {
			return err
		}
		out = newUserSummary(u)
		return nil
	})
	return out, err
}

func (as *authService) createUser(dbc dbctx.Context, op string, in RegisterInput, roles []string) (*domain.User, error) {
	in.normalize()
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	taken, err := as.userRepo.EmailExists(dbc, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Conflict(op, fmt.Sprintf("email %s is already registered", in.Email))
	}
	if taken, err = as.userRepo.UserNameExists(dbc, in.UserName); err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Conflict(op, fmt.Sprintf("user name %s is already taken", in.UserName))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		ID:        uuid.New(),
		UserName:  in.UserName,
		Email:     in.Email,
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if _, err := as.userRepo.Create(dbc, []*domain.User{u}); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	for _, role := range roles {
		if err := as.identity.AddRole(dbc, u.ID, role); err != nil {
			return nil, fmt.Errorf("add role %s: %w", role, err)
		}
		u.Roles = append(u.Roles, domain.UserRole{UserID: u.ID, Role: role})
	}
	return u, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	const op = "auth.login"
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.Validation(op, "email and password are required")
	}
	var pair *TokenPair
	err := aggregates.Write(ctx, as.deps, op, func(dbc dbctx.Context) error {
		u, err := as.identity.FindByEmail(dbc, email)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.Unauthenticated(op, "invalid email or password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
			return domain.Unauthenticated(op, "invalid email or password")
		}
		pair, err = as.issue(dbc, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Refresh rotates the token pair. The old pair stops working.
func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	const op = "auth.refresh"
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, domain.Validation(op, "refresh_token is required")
	}
	var pair *TokenPair
	err := aggregates.Write(ctx, as.deps, op, func(dbc dbctx.Context) error {
		existing, err := as.tokenRepo.GetByRefreshToken(dbc, refreshToken)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.Unauthenticated(op, "invalid refresh token")
		}
		if existing.ExpiresAt.Before(time.Now()) {
			if err := as.tokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
				return err
			}
			return domain.Unauthenticated(op, "refresh token expired")
		}
		users, err := as.identity.FindByIDs(dbc, []uuid.UUID{existing.UserID})
		if err != nil {
			return err
		}
		if len(users) == 0 {
			return domain.Unauthenticated(op, "invalid refresh token")
		}
		if err := as.tokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
			return fmt.Errorf("remove old token: %w", err)
		}
		pair, err = as.issue(dbc, users[0])
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (as *authService) Logout(ctx context.Context) error {
	const op = "auth.logout"
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return domain.Unauthenticated(op, "missing access token")
	}
	return aggregates.Write(ctx, as.deps, op, func(dbc dbctx.Context) error {
		tok, err := as.tokenRepo.GetByAccessToken(dbc, rd.TokenString)
		if err != nil {
			return err
		}
		if tok == nil {
			return nil
		}
		return as.tokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{tok.ID})
	})
}

// Authenticate verifies the JWT and that its token row still exists, then
// returns ctx carrying the caller's request data.
func (as *authService) Authenticate(ctx context.Context, tokenString string) (context.Context, error) {
	const op = "auth.authenticate"
	if tokenString == "" {
		return ctx, domain.Unauthenticated(op, "missing access token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, domain.Unauthenticated(op, "access token expired")
		}
		return ctx, domain.NewError(domain.CodeUnauthenticated, op, "invalid access token", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, domain.Unauthenticated(op, "invalid access token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, domain.NewError(domain.CodeUnauthenticated, op, "invalid user id in token", err)
	}
	tok, err := as.tokenRepo.GetByAccessToken(dbctx.Context{Ctx: ctx}, tokenString)
	if err != nil {
		return ctx, aggregates.MapError(op, err)
	}
	if tok == nil || tok.UserID != userID {
		return ctx, domain.Unauthenticated(op, "access token revoked")
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		UserName:    claims.UserName,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) Me(ctx context.Context) (*UserSummary, error) {
	const op = "auth.me"
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, domain.Unauthenticated(op, "not authenticated")
	}
	var out *UserSummary
	err := aggregates.Read(ctx, op, func(dbc dbctx.Context) error {
		users, err := as.identity.FindByIDs(dbc, []uuid.UUID{rd.UserID})
		if err != nil {
			return err
		}
		if len(users) == 0 {
			return domain.ActorNotFound(op, rd.UserName)
		}
		out = newUserSummary(users[0])
		return nil
	})
	return out, err
}

func (as *authService) AccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) issue(dbc dbctx.Context, u *domain.User) (*TokenPair, error) {
	now := time.Now()
	access, err := as.generateAccessToken(u, now)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	tok := &domain.UserToken{
		ID:           uuid.New(),
		UserID:       u.ID,
		AccessToken:  access,
		RefreshToken: uuid.New().String(),
		ExpiresAt:    now.Add(as.refreshTTL),
	}
	if _, err := as.tokenRepo.Create(dbc, []*domain.UserToken{tok}); err != nil {
		as.log.Warn("create user token failed", "user_id", u.ID, "error", err)
		return nil, fmt.Errorf("create user token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    now.Add(as.accessTTL).UTC(),
	}, nil
}

func (as *authService) generateAccessToken(u *domain.User, now time.Time) (string, error) {
	claims := JWTClaims{
		UserName: u.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
