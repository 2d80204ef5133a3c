package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service/rbac"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/security"
)

var ErrUsernameTaken = errors.New("username already exists")

type Service struct {
	tx       repository.Transactor
	accounts repository.AccountRepository
	rbac     *rbac.Service
	hasher   security.PasswordHasher
}

func NewService(tx repository.Transactor, accounts repository.AccountRepository, rbacSvc *rbac.Service, hasher security.PasswordHasher) *Service {
	return &Service{
		tx:       tx,
		accounts: accounts,
		rbac:     rbacSvc,
		hasher:   hasher,
	}
}

// Provision creates an account holding homeRole plus any extra roles.
func (s *Service) Provision(ctx context.Context, username, password, homeRole string, roles []string) (*model.Account, error) {
	var account *model.Account
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureUsernameFree(ctx, username); err != nil {
			return err
		}

		hash, err := s.hashPassword(password)
		if err != nil {
			return err
		}

		account = &model.Account{Username: username, PasswordHash: hash}
		if err := s.accounts.Create(ctx, account); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewConflict(ErrUsernameTaken.Error(), err)
			}
			return fmt.Errorf("failed to create account: %w", err)
		}

		return s.rbac.Reconcile(ctx, account.ID, homeRole, roles)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateCredentials renames the account, replaces the password when a
// non-blank one is given and reconciles roles.
func (s *Service) UpdateCredentials(ctx context.Context, accountID uuid.UUID, username, password, homeRole string, roles []string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.accounts.GetByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("account", err)
			}
			return fmt.Errorf("failed to get account: %w", err)
		}

		if !strings.EqualFold(account.Username, username) {
			if err := s.ensureUsernameFree(ctx, username); err != nil {
				return err
			}
		}
		account.Username = username

		if strings.TrimSpace(password) != "" {
			hash, err := s.hashPassword(password)
			if err != nil {
				return err
			}
			account.PasswordHash = hash
		}

		if err := s.accounts.Update(ctx, account); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewConflict(ErrUsernameTaken.Error(), err)
			}
			return fmt.Errorf("failed to update account: %w", err)
		}

		return s.rbac.Reconcile(ctx, account.ID, homeRole, roles)
	})
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return "", apperrors.NewValidation(err.Error(), err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// Remove drops the account's role grants and then the account itself.
func (s *Service) Remove(ctx context.Context, accountID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.rbac.RevokeAll(ctx, accountID); err != nil {
			return err
		}
		if _, err := s.accounts.Delete(ctx, accountID); err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		return nil
	})
}

// CreateAdmin creates an account without a profile that holds the Admin role.
func (s *Service) CreateAdmin(ctx context.Context, req *model.CreateAdminRequest) (*model.AccountResponse, error) {
	account, err := s.Provision(ctx, req.Username, req.Password, model.RoleAdmin, nil)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("account_id", account.ID.String()).
		Str("username", account.Username).
		Msg("Admin account created")

	return &model.AccountResponse{
		AccountID: account.ID,
		Username:  account.Username,
		Roles:     []string{model.RoleAdmin},
	}, nil
}

// EnsureAdmin creates the bootstrap admin unless the username already exists.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	exists, err := s.accounts.UsernameExists(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := s.CreateAdmin(ctx, &model.CreateAdminRequest{Username: username, Password: password}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) ensureUsernameFree(ctx context.Context, username string) error {
	exists, err := s.accounts.UsernameExists(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return apperrors.NewConflict(ErrUsernameTaken.Error(), nil)
	}
	return nil
}
