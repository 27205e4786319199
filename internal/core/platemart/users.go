package platemart

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/platemart/platemart/internal/adapters/store/errstore"
	"github.com/platemart/platemart/internal/adapters/store/model"
	"github.com/platemart/platemart/pkg/codes"
)

// Register creates a deactivated account and mails the registration code.
// Login is gated on the allow flag until the code is confirmed.
func (p *Platemart) Register(ctx context.Context, name, email, password string) (model.User, error) {
	var user model.User

	if err := validateName(name); err != nil {
		return user, fmt.Errorf("name invalidate: %w", err)
	}
	if err := validateEmail(email); err != nil {
		return user, fmt.Errorf("email invalidate: %w", err)
	}
	if err := validatePassword(password); err != nil {
		return user, fmt.Errorf("password invalidate: %w", err)
	}

	hash, err := codes.HashPassword(password)
	if err != nil {
		return user, fmt.Errorf("failed hash password: %w", err)
	}

	user, err = p.store.CreateUser(ctx, model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	})
	if err != nil {
		return user, fmt.Errorf("failed register user: %w", err)
	}

	p.notify.Registration(user, registrationCode(user))

	return user, nil
}

// ConfirmRegistration checks the mailed code and activates the account.
func (p *Platemart) ConfirmRegistration(ctx context.Context, email, code string) error {
	user, err := p.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed getting user `%s`: %w", email, err)
	}

	if code != registrationCode(user) {
		return ErrCodeNotValid
	}

	user.Allow = 1
	if _, err := p.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed activate user: %w", err)
	}

	return nil
}

// Authorization verifies the credential and the allow flag.
func (p *Platemart) Authorization(ctx context.Context, email, password string) (model.User, error) {
	var user model.User

	if err := validateEmail(email); err != nil {
		return user, fmt.Errorf("email invalidate: %w", err)
	}
	if err := validatePassword(password); err != nil {
		return user, fmt.Errorf("password invalidate: %w", err)
	}

	user, err := p.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return user, ErrUserNotFound
		}
		return user, fmt.Errorf("failed getting user `%s`: %w", email, err)
	}

	if !codes.CheckPassword(password, user.PasswordHash) {
		return user, ErrPasswordNotEqual
	}
	if user.Allow != 1 {
		return user, ErrUserNotAllowed
	}

	return user, nil
}

// RequestPasswordReset mails a reset code to an existing account.
func (p *Platemart) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := p.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed getting user `%s`: %w", email, err)
	}

	p.notify.PasswordReset(user, resetCode(user))

	return nil
}

// ResetPassword checks the mailed reset code and stores a fresh credential.
func (p *Platemart) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return fmt.Errorf("password invalidate: %w", err)
	}

	user, err := p.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed getting user `%s`: %w", email, err)
	}

	if code != resetCode(user) {
		return ErrCodeNotValid
	}

	hash, err := codes.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed hash password: %w", err)
	}

	user.PasswordHash = hash
	if _, err := p.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed update password: %w", err)
	}

	return nil
}

// RequireAdmin checks that the user may run administrative operations.
func (p *Platemart) RequireAdmin(ctx context.Context, userID uint) (model.User, error) {
	user, err := p.GetUser(ctx, userID)
	if err != nil {
		return user, err
	}
	if user.Role != model.RoleAdmin && user.Role != model.RoleSuperUser {
		return user, ErrRoleNotAllowed
	}

	return user, nil
}

func registrationCode(user model.User) string {
	saltHash, verifier := codes.SplitHash(user.PasswordHash)
	return codes.UserCode(user.Name, saltHash, verifier, user.Email)
}

func resetCode(user model.User) string {
	return codes.ResetCode(strconv.Itoa(int(user.ID)), user.Email)
}
