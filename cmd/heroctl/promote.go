package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
)

func newPromoteCmd(e *env) *cobra.Command {
	var (
		email  string
		demote bool
	)

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Grant (or with --demote revoke) the admin role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := e.users.GetByEmail(cmd.Context(), strings.ToLower(strings.TrimSpace(email)))
			if err != nil {
				return err
			}
			role := domain.RoleAdmin
			if demote {
				role = domain.RoleUser
			}
			if err := e.users.SetRole(cmd.Context(), u.ID, role); err != nil {
				return err
			}
			e.printf("%s is now %s\n", u.Username, role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	cmd.Flags().BoolVar(&demote, "demote", false, "set the role back to user")
	return cmd
}
