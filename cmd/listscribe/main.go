package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"listscribe"
	"listscribe/checklist"
	"listscribe/storage"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// tokenKey holds the credential saved by `listscribe login`.
const tokenKey = "authToken"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("SETUP: Could not load .env", "error", err)
	}

	var cfg listscribe.ClientConfig
	if err := listscribe.DecodeEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode: %s\n", err)
		os.Exit(1)
	}

	a := &app{cfg: cfg, httpClient: &http.Client{Timeout: 2 * time.Minute}}
	if err := a.rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg        listscribe.ClientConfig
	httpClient listscribe.HTTPClient
	debug      bool
	cacheDB    string
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "listscribe",
		Short: "Turn a photo of a grocery list into a checklist",
		Long: `listscribe sends a photo of a handwritten grocery list to a listscribe
server, stores the parsed items locally and lets you tick them off.

State lives in a SQLite file by default. Set LISTSCRIBE_STATE_BACKEND to
"file" for a directory of JSON files or "s3" for a bucket.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if a.debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.ServerURL, "server", a.cfg.ServerURL, "listscribe server URL")
	flags.StringVar(&a.cfg.StateBackend, "state", a.cfg.StateBackend, "state backend: sqlite, file or s3")
	flags.StringVar(&a.cfg.StatePath, "state-path", a.cfg.StatePath, "SQLite file or JSON directory for state")
	flags.BoolVar(&a.debug, "debug", false, "verbose logs and raw dumps")

	root.AddCommand(
		a.loginCmd(),
		a.scanCmd(),
		a.listCmd(),
		a.toggleCmd("check", true),
		a.toggleCmd("uncheck", false),
		a.clearCmd(),
		a.assetsCmd(),
	)
	return root
}

// openKV opens the configured state backend.
func (a *app) openKV(ctx context.Context) (storage.KV, func() error, error) {
	noop := func() error { return nil }

	switch a.cfg.StateBackend {
	case "", "sqlite":
		db, err := storage.OpenSQLite(ctx, a.cfg.StatePath)
		if err != nil {
			return nil, noop, err
		}
		return db, db.Close, nil

	case "file":
		return storage.NewFileKV(a.cfg.StatePath), noop, nil

	case "s3":
		if a.cfg.S3Bucket == "" {
			return nil, noop, errors.New("LISTSCRIBE_S3_BUCKET must be set for the s3 backend")
		}
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return storage.NewS3KV(s3.NewFromConfig(awsCfg), a.cfg.S3Bucket, a.cfg.S3Prefix), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown state backend %q", a.cfg.StateBackend)
	}
}

// withChecklist loads the stored checklist and hands it to fn.
func (a *app) withChecklist(ctx context.Context, fn func(kv storage.KV, list *checklist.Checklist) error) error {
	kv, closeKV, err := a.openKV(ctx)
	if err != nil {
		return err
	}
	defer closeKV() // nolint: errcheck

	list := checklist.New(kv)
	if err := list.Load(ctx); err != nil {
		return err
	}
	return fn(kv, list)
}

func (a *app) token(ctx context.Context, kv storage.KV) (string, error) {
	if a.cfg.Token != "" {
		return a.cfg.Token, nil
	}
	b, ok, err := kv.Get(ctx, tokenKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("not logged in: run `listscribe login` or set LISTSCRIBE_TOKEN")
	}
	return string(b), nil
}

func render(w io.Writer, list *checklist.Checklist) error {
	return checklist.Render(w, checklist.BuildView(list.Items(), list.State()))
}
