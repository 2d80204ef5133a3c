package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

var (
	ErrRoleNotFound    = errors.New("role not found")
	ErrHomeRoleMissing = errors.New("home role missing from reference data")
)

const roleCacheTTL = 10 * time.Minute

type Service struct {
	repo  repository.RBACRepository
	roles *cache.Cache
}

func NewService(repo repository.RBACRepository) *Service {
	return &Service{
		repo:  repo,
		roles: cache.New(roleCacheTTL, 2*roleCacheTTL),
	}
}

// Reconcile makes the account hold exactly requested ∪ {homeRole}. Names
// compare case-insensitively. Every requested role is resolved before any
// grant or revoke is issued, so an unknown name leaves the account untouched.
func (s *Service) Reconcile(ctx context.Context, accountID uuid.UUID, homeRole string, requested []string) error {
	home, err := s.lookupRole(ctx, homeRole)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewInternal(fmt.Errorf("%w: %q", ErrHomeRoleMissing, homeRole))
		}
		return fmt.Errorf("failed to load home role: %w", err)
	}

	desired := map[string]bool{key(home.Name): true}
	desiredNames := []string{home.Name}
	for _, name := range requested {
		name = strings.TrimSpace(name)
		if name == "" || desired[key(name)] {
			continue
		}
		desired[key(name)] = true
		desiredNames = append(desiredNames, name)
	}

	held, err := s.repo.ListAccountRoles(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account roles: %w", err)
	}
	current := make(map[string]bool, len(held))
	for _, role := range held {
		current[key(role.Name)] = true
	}

	var toGrant []*model.Role
	for _, name := range desiredNames {
		if current[key(name)] {
			continue
		}
		role, err := s.lookupRole(ctx, name)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewValidation(fmt.Sprintf("role %q not found", name), ErrRoleNotFound)
			}
			return fmt.Errorf("failed to resolve role %q: %w", name, err)
		}
		toGrant = append(toGrant, role)
	}

	logger := zerolog.Ctx(ctx)
	for _, role := range held {
		if desired[key(role.Name)] {
			continue
		}
		if _, err := s.repo.RevokeRole(ctx, accountID, role.ID); err != nil {
			return fmt.Errorf("failed to revoke role %q: %w", role.Name, err)
		}
		logger.Debug().Str("account_id", accountID.String()).Str("role", role.Name).Msg("Role revoked")
	}

	for _, role := range toGrant {
		if err := s.repo.GrantRole(ctx, accountID, role.ID); err != nil {
			return fmt.Errorf("failed to grant role %q: %w", role.Name, err)
		}
		logger.Debug().Str("account_id", accountID.String()).Str("role", role.Name).Msg("Role granted")
	}

	return nil
}

// RoleNames returns the names of the roles held by the account.
func (s *Service) RoleNames(ctx context.Context, accountID uuid.UUID) ([]string, error) {
	roles, err := s.repo.ListAccountRoles(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account roles: %w", err)
	}

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return names, nil
}

func (s *Service) ListRoles(ctx context.Context) ([]*model.Role, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// RevokeAll drops every grant held by the account.
func (s *Service) RevokeAll(ctx context.Context, accountID uuid.UUID) error {
	if _, err := s.repo.RevokeAllRoles(ctx, accountID); err != nil {
		return fmt.Errorf("failed to revoke roles: %w", err)
	}
	return nil
}

func (s *Service) lookupRole(ctx context.Context, name string) (*model.Role, error) {
	if cached, ok := s.roles.Get(key(name)); ok {
		return cached.(*model.Role), nil
	}

	role, err := s.repo.GetRoleByName(ctx, name)
	if err != nil {
		return nil, err
	}
	s.roles.SetDefault(key(role.Name), role)
	return role, nil
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
