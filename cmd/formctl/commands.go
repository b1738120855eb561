package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"formcraft-backend-go/internal/core"
	"formcraft-backend-go/internal/models"
	"formcraft-backend-go/internal/session"
)

// services is what the commands need from the application graph.
type services struct {
	Users       core.UserService
	Submissions core.SubmissionService
	AdminEmail  string
}

type servicesLoader func(ctx context.Context) (*services, func(), error)

// operatorSession acts on behalf of the configured admin account.
func operatorSession(adminEmail string) *session.Session {
	return &session.Session{UID: "formctl", Email: adminEmail, EmailVerified: true, Role: models.RoleAdmin}
}

func newRootCmd(load servicesLoader) *cobra.Command {
	root := &cobra.Command{
		Use:           "formctl",
		Short:         "Operator tooling for the FormCraft backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSetRoleCmd(load), newExportCmd(load), newTemplatesCmd())
	return root
}

func newSetRoleCmd(load servicesLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <email> <role>",
		Short: "Set the role (user or admin) of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			user, err := svc.Users.GetByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated, err := svc.Users.SetRole(cmd.Context(), operatorSession(svc.AdminEmail), user.ID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", updated.Email, updated.ID, updated.Role)
			return nil
		},
	}
}

func newExportCmd(load servicesLoader) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <formId>",
		Short: "Export all responses of a form as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return svc.Submissions.ExportCSV(cmd.Context(), operatorSession(svc.AdminEmail), args[0], w)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write CSV to this file instead of stdout")
	return cmd
}

// newTemplatesCmd lists the embedded catalogue. It needs no backend connection.
func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the starter form templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ts, err := core.NewTemplateService()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tNAME\tFIELDS")
			for _, t := range ts.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", t.ID, t.Category, t.Name, len(t.Form.Fields))
			}
			return tw.Flush()
		},
	}
}
