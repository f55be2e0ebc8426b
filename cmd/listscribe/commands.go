package main

import (
	"fmt"
	"os"

	"listscribe"
	"listscribe/checklist"
	"listscribe/storage"

	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Get a token from the server and remember it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			api := checklist.NewAPIClient(a.cfg.ServerURL, "", a.httpClient)
			token, err := api.Authenticate(ctx, username, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			kv, closeKV, err := a.openKV(ctx)
			if err != nil {
				return err
			}
			defer closeKV() // nolint: errcheck

			if err := kv.Set(ctx, tokenKey, []byte(token)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", os.Getenv("BASIC_AUTH_USERNAME"), "Basic auth username")
	cmd.Flags().StringVarP(&password, "password", "p", os.Getenv("BASIC_AUTH_PASSWORD"), "Basic auth password")
	return cmd
}

func (a *app) scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <image> [image...]",
		Short: "Transcribe one or more photos into the checklist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			images := make([][]byte, len(args))
			for i, path := range args {
				b, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				images[i] = b
			}

			return a.withChecklist(cmd.Context(), func(kv storage.KV, list *checklist.Checklist) error {
				token, err := a.token(cmd.Context(), kv)
				if err != nil {
					return err
				}

				ctrl := checklist.NewController(list, checklist.NewAPIClient(a.cfg.ServerURL, token, a.httpClient))
				scanErr := ctrl.Scan(cmd.Context(), images...)

				status, msg := ctrl.State()
				if a.debug {
					listscribe.Dump(cmd.ErrOrStderr(), status.String(), ctrl.Items())
				}
				if status == checklist.StatusError {
					if err := checklist.RenderMessage(cmd.OutOrStdout(), msg); err != nil {
						return err
					}
					return scanErr
				}
				return render(cmd.OutOrStdout(), list)
			})
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the stored checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withChecklist(cmd.Context(), func(_ storage.KV, list *checklist.Checklist) error {
				return render(cmd.OutOrStdout(), list)
			})
		},
	}
}

func (a *app) toggleCmd(use string, checked bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: fmt.Sprintf("Mark an item as %sed", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withChecklist(cmd.Context(), func(_ storage.KV, list *checklist.Checklist) error {
				if err := list.Toggle(cmd.Context(), args[0], checked); err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), list)
			})
		},
	}
}

func (a *app) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the stored checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withChecklist(cmd.Context(), func(_ storage.KV, list *checklist.Checklist) error {
				return list.Clear(cmd.Context())
			})
		},
	}
}
