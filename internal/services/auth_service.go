package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"travelagency/internal/auth"
	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
	"travelagency/internal/repositories"
	"travelagency/internal/utils"
)

// dummyHash keeps the bcrypt cost paid for unknown emails.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z0uX1r9g8Sx5Ff6pQe3o0b2G"

type LoginResult struct {
	User      models.AdminUser
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	DB        *sql.DB
	Sessions  *auth.Sessions
	RequestID string
}

func (s AuthService) users() repositories.AdminUserRepository {
	return repositories.AdminUserRepository{DB: dbOr(s.DB)}
}

// Login checks the credentials and issues a session token. Unknown, inactive and
// wrong-password logins all fail the same way.
func (s AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = utils.NormalizeEmail(email)
	invalid := domain.UnauthorizedError{Msg: "invalid credentials"}
	if email == "" || password == "" {
		return LoginResult{}, invalid
	}

	u, err := s.users().GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		auth.CheckPassword(dummyHash, password)
		utils.LogEvent(s.RequestID, "auth", "login", "unknown email")
		return LoginResult{}, invalid
	}
	if err != nil {
		return LoginResult{}, repoError("admin user", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) || !u.Active {
		utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("rejected login for user %d", u.ID))
		return LoginResult{}, invalid
	}

	token, exp, err := s.Sessions.Issue(u)
	if err != nil {
		return LoginResult{}, domain.InternalError{Err: err}
	}
	if err := s.users().TouchLogin(ctx, u.ID); err != nil {
		utils.LogError(s.RequestID, "auth", "touch_login", err)
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user %d signed in", u.ID))
	return LoginResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// Me reloads the signed-in admin so revoked or deactivated accounts stop working.
func (s AuthService) Me(ctx context.Context, userID int64) (models.AdminUser, error) {
	u, err := s.users().GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AdminUser{}, domain.UnauthorizedError{Msg: "session user not found"}
	}
	if err != nil {
		return models.AdminUser{}, repoError("admin user", err)
	}
	if !u.Active {
		return models.AdminUser{}, domain.UnauthorizedError{Msg: "account disabled"}
	}
	return u, nil
}

type AdminUserService struct {
	DB        *sql.DB
	RequestID string
}

func (s AdminUserService) users() repositories.AdminUserRepository {
	return repositories.AdminUserRepository{DB: dbOr(s.DB)}
}

func (s AdminUserService) List(ctx context.Context) ([]models.AdminUser, error) {
	users, err := s.users().List(ctx)
	return users, repoError("admin user", err)
}

func (s AdminUserService) Create(ctx context.Context, in models.AdminUserInput) (models.AdminUser, error) {
	if len(in.Password) < 10 {
		return models.AdminUser{}, domain.ValidationError{Field: "password", Msg: "at least 10 characters"}
	}
	u, err := adminFromInput(in)
	if err != nil {
		return models.AdminUser{}, err
	}
	if u.PasswordHash, err = auth.HashPassword(in.Password); err != nil {
		return models.AdminUser{}, domain.ValidationError{Field: "password", Msg: "cannot hash password", Err: err}
	}
	id, err := s.users().Create(ctx, u)
	if err != nil {
		return models.AdminUser{}, repoError("admin user", err)
	}
	utils.LogEvent(s.RequestID, "admin_user", "create", fmt.Sprintf("admin user %d created", id))
	created, err := s.users().GetByID(ctx, id)
	return created, repoError("admin user", err)
}

func (s AdminUserService) Update(ctx context.Context, id int64, in models.AdminUserInput) (models.AdminUser, error) {
	if err := requireID(id); err != nil {
		return models.AdminUser{}, err
	}
	u, err := adminFromInput(in)
	if err != nil {
		return models.AdminUser{}, err
	}
	u.ID = id
	if in.Password != "" {
		if len(in.Password) < 10 {
			return models.AdminUser{}, domain.ValidationError{Field: "password", Msg: "at least 10 characters"}
		}
		if u.PasswordHash, err = auth.HashPassword(in.Password); err != nil {
			return models.AdminUser{}, domain.ValidationError{Field: "password", Msg: "cannot hash password", Err: err}
		}
	}
	if err := s.users().Update(ctx, u); err != nil {
		return models.AdminUser{}, repoError("admin user", err)
	}
	updated, err := s.users().GetByID(ctx, id)
	return updated, repoError("admin user", err)
}

// Delete removes another admin; nobody can delete their own account.
func (s AdminUserService) Delete(ctx context.Context, currentUserID, id int64) error {
	if err := requireID(id); err != nil {
		return err
	}
	if id == currentUserID {
		return domain.ForbiddenError{Msg: "cannot delete your own account"}
	}
	if err := s.users().Delete(ctx, id); err != nil {
		return repoError("admin user", err)
	}
	utils.LogEvent(s.RequestID, "admin_user", "delete", fmt.Sprintf("admin user %d deleted", id))
	return nil
}

func adminFromInput(in models.AdminUserInput) (models.AdminUser, error) {
	u := models.AdminUser{
		Email:  utils.NormalizeEmail(in.Email),
		Name:   utils.NormalizeSpace(in.Name),
		Role:   strings.ToLower(strings.TrimSpace(in.Role)),
		Active: true,
	}
	if in.Active != nil {
		u.Active = *in.Active
	}
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return u, domain.ValidationError{Field: "email", Msg: "invalid email"}
	}
	if u.Name == "" {
		return u, domain.ValidationError{Field: "name", Msg: "required"}
	}
	if u.Role != models.RoleAdmin && u.Role != models.RoleEditor {
		return u, domain.ValidationError{Field: "role", Msg: "must be admin or editor"}
	}
	return u, nil
}
