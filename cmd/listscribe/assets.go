package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"listscribe/offline"
	"listscribe/storage"

	"github.com/spf13/cobra"
)

func (a *app) assetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage the offline copy of the web client",
		Long: `Keeps a versioned copy of the web client's assets so they can be served
without a network. "install" fills the cache for LISTSCRIBE_CACHE_VERSION,
"get" reads through it and "activate" drops older versions.`,
	}
	cmd.PersistentFlags().StringVar(&a.cacheDB, "cache-db", "offline.db", "SQLite file holding cached assets")
	cmd.PersistentFlags().IntVar(&a.cfg.CacheVersion, "cache-version", a.cfg.CacheVersion, "cache version to install or keep")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "install",
			Short: "Fetch and cache every precached asset",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorker(cmd.Context(), func(w *offline.Worker) error {
					if err := w.Install(cmd.Context()); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Installed %s\n", w.CacheName())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "get <path>",
			Short: "Print an asset, from the cache when possible",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorker(cmd.Context(), func(w *offline.Worker) error {
					target, err := w.Resolve(args[0])
					if err != nil {
						return err
					}
					req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, target, nil)
					if err != nil {
						return err
					}
					client := &http.Client{Transport: &offline.Transport{Worker: w}}
					resp, err := client.Do(req)
					if err != nil {
						return err
					}
					defer resp.Body.Close()
					if resp.StatusCode != http.StatusOK {
						return fmt.Errorf("get %s: %s", target, resp.Status)
					}
					_, err = io.Copy(cmd.OutOrStdout(), resp.Body)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "activate",
			Short: "Delete cached asset versions other than the current one",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorker(cmd.Context(), func(w *offline.Worker) error {
					deleted, err := w.Activate(cmd.Context())
					for _, name := range deleted {
						fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", name)
					}
					return err
				})
			},
		},
	)
	return cmd
}

func (a *app) withWorker(ctx context.Context, fn func(w *offline.Worker) error) error {
	store, err := storage.OpenSQLite(ctx, a.cacheDB)
	if err != nil {
		return err
	}
	defer store.Close() // nolint: errcheck

	w, err := offline.NewWorker(store, a.httpClient, a.cfg.ServerURL, a.cfg.CacheVersion, offline.DefaultPrecache)
	if err != nil {
		return err
	}
	return fn(w)
}
