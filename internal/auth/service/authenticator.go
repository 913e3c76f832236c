package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
	"github.com/aussiebroadwan/taskgate/pkg/cryptox"
	"github.com/aussiebroadwan/taskgate/pkg/idx"
	"github.com/aussiebroadwan/taskgate/pkg/jwtx"
	"github.com/aussiebroadwan/taskgate/pkg/slogx"
)

// Authenticator handles password login and self-service registration.
type Authenticator struct {
	Store  store.Store
	Codec  *jwtx.Codec
	Locker OwnerLocker

	// DefaultRole is attached to every registered user. Empty means
	// domain.DefaultRoleName.
	DefaultRole string

	Metrics *Metrics
	Now     func() time.Time
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	// PasswordConfirm is only checked when set.
	PasswordConfirm string
	FirstName       string
	LastName        string
}

// errDuplicateUser is resolved into ErrUsernameTaken or ErrEmailTaken once
// the transaction is gone.
var errDuplicateUser = errors.New("duplicate user")

// NormalizeEmail is applied to every email before it reaches the store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login authenticates by email and password and starts a new session. Any
// previous refresh token of the user stops working.
func (a *Authenticator) Login(ctx context.Context, email, password string) (pair *domain.TokenPair, err error) {
	defer func() { record(ctx, metricsOrNoop(a.Metrics).logins, err) }()

	l := slogx.FromContext(ctx)
	email = NormalizeEmail(email)

	user, err := a.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn the same time as a real verification.
			_ = cryptox.VerifyDummy(password)
			l.Info("login rejected", slog.String("reason", "unknown_email"))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !user.Active {
		l.Info("login rejected", slog.String("reason", "inactive"), slog.String("user_id", user.ID))
		return nil, ErrAccountInactive
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Info("login rejected", slog.String("reason", "bad_password"), slog.String("user_id", user.ID))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}

	access, err := accessToken(a.Codec, user)
	if err != nil {
		return nil, err
	}

	unlock, err := lockerOrLocal(a.Locker).Lock(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("lock owner: %w", err)
	}
	defer unlock()

	var refresh string
	err = a.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		refresh, err = replaceRefreshToken(ctx, tx, a.Codec, user, nowOrWall(a.Now))
		return err
	})
	if err != nil {
		return nil, err
	}

	l.Info("login succeeded", slog.String("user_id", user.ID))
	return tokenPair(a.Codec, access, refresh), nil
}

// Register creates an active user with the default role.
func (a *Authenticator) Register(ctx context.Context, in RegisterInput) (info *domain.UserInfo, err error) {
	defer func() { record(ctx, metricsOrNoop(a.Metrics).registrations, err) }()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = NormalizeEmail(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if n := utf8.RuneCountInString(in.Username); n < MinUsernameLength || n > MaxUsernameLength {
		return nil, ErrUsernameLength
	}
	if in.PasswordConfirm != "" && in.PasswordConfirm != in.Password {
		return nil, ErrPasswordMismatch
	}

	if err := a.checkAvailable(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	roleName := a.DefaultRole
	if roleName == "" {
		roleName = domain.DefaultRoleName
	}

	now := nowOrWall(a.Now)
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Active:       true,
		Roles:        []string{roleName},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = a.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := EnsureRole(ctx, tx, roleName)
		if err != nil {
			return fmt.Errorf("ensure role %q: %w", roleName, err)
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return errDuplicateUser
			}
			return err
		}
		return tx.Users().AssignRole(ctx, user.ID, role.ID)
	})
	if errors.Is(err, errDuplicateUser) {
		// Lost a race with a concurrent registration.
		if err := a.checkAvailable(ctx, in.Username, in.Email); err != nil {
			return nil, err
		}
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", user.ID))
	out := user.Info()
	return &out, nil
}

func (a *Authenticator) checkAvailable(ctx context.Context, username, email string) error {
	taken, err := a.Store.Users().ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}

	taken, err = a.Store.Users().ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}
