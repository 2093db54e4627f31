package web

import (
	"context"
	"errors"

	"github.com/minitienda/minitienda/internal/auth"
	"github.com/minitienda/minitienda/internal/errorz"
)

var errOwnAccount = errors.New("you can't change your own account this way")

type usersPage struct {
	Accounts []auth.AccountInfo
	Roles    []auth.Role
	States   []auth.AccountState
}

func (s *Server) userRoutes() {
	svc := s.deps.AuthService

	s.adminOnly("GET /users", mapResponse(s, s.usersPage).response(render[struct{}, usersPage]("users")))
	{
		h := mapRequest(s, func(ctx context.Context, n auth.NewAccount) error {
			_, err := svc.CreateAccount(ctx, n)
			if errors.Is(err, auth.ErrDuplicateAccount) {
				return errorz.InvalidInput{errorz.Keyed{Key: "Email", Err: err}}
			}
			return err
		})
		h.response(redirect[auth.NewAccount, struct{}]("/users", "Account created."))
		h.failure(formFailure[auth.NewAccount, struct{}]("users", s.usersPage))

		s.adminOnly("POST /users", h)
	}
	{
		h := mapRequest(s, svc.ResetPassword)
		h.request(withPathID(s, func(in *auth.PasswordReset, id int) {
			in.ID = id
		}))
		h.response(redirect[auth.PasswordReset, struct{}]("/users", "Password changed."))
		h.failure(formFailure[auth.PasswordReset, struct{}]("users", s.usersPage))

		s.adminOnly("POST /users/{id}/password", h)
	}
	{
		h := mapRequest(s, func(ctx context.Context, c auth.StateChange) error {
			if isOwnAccount(ctx, c.ID) && c.State != auth.StateActive {
				return errorz.InvalidInput{errorz.Keyed{Key: "State", Err: errOwnAccount}}
			}
			return svc.SetState(ctx, c)
		})
		h.request(withPathID(s, func(in *auth.StateChange, id int) {
			in.ID = id
		}))
		h.response(redirect[auth.StateChange, struct{}]("/users", "Account state changed."))
		h.failure(formFailure[auth.StateChange, struct{}]("users", s.usersPage))

		s.adminOnly("POST /users/{id}/state", h)
	}
	{
		h := mapRequest(s, func(ctx context.Context, id int) error {
			if isOwnAccount(ctx, id) {
				return errorz.InvalidInput{errorz.Keyed{Key: "ID", Err: errOwnAccount}}
			}
			return svc.DeleteAccount(ctx, id)
		})
		h.request(pathIDRequest)
		h.response(redirect[int, struct{}]("/users", "Account deleted."))
		h.failure(formFailure[int, struct{}]("users", s.usersPage))

		s.adminOnly("POST /users/{id}/delete", h)
	}
}

func (s *Server) usersPage(ctx context.Context) (usersPage, error) {
	accounts, err := s.deps.AuthService.ListAccounts(ctx)
	if err != nil {
		return usersPage{}, err
	}

	return usersPage{
		Accounts: accounts,
		Roles:    []auth.Role{auth.RoleStaff, auth.RoleAdmin},
		States:   []auth.AccountState{auth.StateActive, auth.StateInactive, auth.StateBlocked},
	}, nil
}

func isOwnAccount(ctx context.Context, id int) bool {
	own, ok := identityFromCtx(ctx)
	return ok && own.ID == id
}
