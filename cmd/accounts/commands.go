package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/minitienda/minitienda/internal/auth"
	"github.com/minitienda/minitienda/internal/email"
	"github.com/spf13/cobra"
)

func newCreateCmd(a *app) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create an active account, the password is read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := email.ParseAddress(args[0])
			if err != nil {
				return err
			}

			var r auth.Role
			if err := r.UnmarshalText([]byte(role)); err != nil {
				return err
			}

			pwd, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return a.withService(cmd.Context(), func(svc *auth.Service) error {
				id, err := svc.CreateAccount(cmd.Context(), auth.NewAccount{
					Email:    addr,
					Password: pwd,
					Role:     r,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "created %s account %d for %s\n", id.Role, id.ID, id.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", string(auth.RoleStaff), "role of the account, admin or staff")

	return cmd
}

func newResetPasswordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password EMAIL",
		Short: "Replace the password of an account, the password is read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return a.withService(cmd.Context(), func(svc *auth.Service) error {
				account, err := findAccount(cmd.Context(), svc, args[0])
				if err != nil {
					return err
				}

				err = svc.ResetPassword(cmd.Context(), auth.PasswordReset{
					ID:       account.ID,
					Password: pwd,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "password of %s was reset\n", account.Email)
				return nil
			})
		},
	}
}

func newSetStateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-state EMAIL active|inactive|blocked",
		Short: "Change the state of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var state auth.AccountState
			if err := state.UnmarshalText([]byte(args[1])); err != nil {
				return err
			}

			return a.withService(cmd.Context(), func(svc *auth.Service) error {
				account, err := findAccount(cmd.Context(), svc, args[0])
				if err != nil {
					return err
				}

				err = svc.SetState(cmd.Context(), auth.StateChange{
					ID:    account.ID,
					State: state,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", account.Email, state)
				return nil
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete EMAIL",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *auth.Service) error {
				account, err := findAccount(cmd.Context(), svc, args[0])
				if err != nil {
					return err
				}

				err = svc.DeleteAccount(cmd.Context(), account.ID)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", account.Email)
				return nil
			})
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *auth.Service) error {
				accounts, err := svc.ListAccounts(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tEMAIL\tROLE\tSTATE\tCREATED")
				for _, acc := range accounts {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", acc.ID, acc.Email, acc.Role, acc.State, acc.CreatedAt.Format("2006-01-02 15:04"))
				}
				return w.Flush()
			})
		},
	}
}
