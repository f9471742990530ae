// Package cli is the resumectl command tree: it edits one draft kept in the
// encrypted local store and can push it to a résumé service.
package cli

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"resume-builder/internal/adapter/backend"
	"resume-builder/internal/adapter/localstore"
	"resume-builder/internal/editor"
	"resume-builder/internal/logging"
	"resume-builder/internal/model"
)

const passphraseEnv = "RESUMECTL_PASSPHRASE"

var version = "dev"

var (
	dbPath         string
	passphrase     string
	remoteURL      string
	draftLocale    string
	autoClearHours int
	logLevel       string
)

var rootCmd = &cobra.Command{
	Use:           "resumectl",
	Short:         "Edit a résumé draft from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("resumectl version %s\n", version)
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&dbPath, "db", "resume-draft.db", "path of the local draft database")
	f.StringVar(&passphrase, "passphrase", "", "passphrase of the local store (default $"+passphraseEnv+")")
	f.StringVar(&remoteURL, "remote", "", "base URL of the resume service; empty keeps everything local")
	f.StringVar(&draftLocale, "locale", "US", "locale of a new draft")
	f.IntVar(&autoClearHours, "auto-clear-hours", 24, "discard a draft untouched for this many hours (0 keeps it)")
	f.StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the command tree with args taken from os.Args.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// workspace is an open local store plus the session editing its draft.
type workspace struct {
	store   *localstore.Store
	session *editor.Session
	log     logging.Logger
}

func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	ctx := cmd.Context()
	pass := passphrase
	if pass == "" {
		pass = os.Getenv(passphraseEnv)
	}
	if pass == "" {
		return nil, errors.New("a passphrase is required (--passphrase or $" + passphraseEnv + ")")
	}
	if autoClearHours < 0 {
		return nil, errors.New("--auto-clear-hours must not be negative")
	}

	log := logging.New(cmd.ErrOrStderr(), "text", logLevel)
	store, err := localstore.Open(ctx, dbPath, pass, localstore.WithMaxAge(time.Duration(autoClearHours)*time.Hour))
	if err != nil {
		return nil, err
	}

	cfg := editor.Config{Mode: editor.ModeLocalOnly, Local: store, Logger: log}
	if remoteURL != "" {
		cfg.Remote = backend.NewClient(remoteURL)
	}
	s := editor.NewSession(model.NewDocument(draftLocale), cfg)
	if _, err := s.Restore(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return &workspace{store: store, session: s, log: log}, nil
}

func (w *workspace) Close() {
	w.session.Close()
	if err := w.store.Close(); err != nil {
		w.log.Warn(context.Background(), "close local store", "error", err)
	}
}

// withWorkspace opens the workspace around fn.
func withWorkspace(fn func(cmd *cobra.Command, w *workspace, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		w, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		defer w.Close()
		return fn(cmd, w, args)
	}
}
