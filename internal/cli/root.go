package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Joseda-hg/lazytodo/internal/config"
	"github.com/Joseda-hg/lazytodo/internal/db"
)

const dbFileName = "tasks.db"

// app holds the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	dataDir    string

	cfg config.Config

	now        func() time.Time
	stdin      io.Reader
	isTerminal func() bool
}

func newApp() *app {
	return &app{
		now:   time.Now,
		stdin: os.Stdin,
		isTerminal: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// NewRootCommand builds the todo command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(newApp())
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "todo",
		Short: "A todo list kept in a local SQLite database",
		Long: `todo tracks tasks with optional descriptions, difficulty, deadlines,
tags and parent tasks. Tasks are addressed by any unique prefix of their ID.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&a.dataDir, "path", "p", "", "directory holding the task database")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file path")

	root.AddCommand(
		newAddCommand(a),
		newCompleteCommand(a),
		newUpdateCommand(a),
		newNextCommand(a),
		newShowCommand(a),
		newListCommand(a),
		newTagsCommand(a),
		newRemoveCommand(a),
		newClearCommand(a),
		newTUICommand(a),
	)
	return root
}

// Execute runs the root command
func Execute(version string) error {
	root := NewRootCommand()
	root.Version = version
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *app) loadConfig() (string, error) {
	cfgPath := a.configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultConfigPath()
		if err != nil {
			return "", err
		}
	}

	// The file on disk only ever receives defaults; flags and TODO_*
	// variables apply to the current run.
	defaultDB := filepath.Join(filepath.Dir(cfgPath), dbFileName)
	seed := config.Default()
	seed.DBPath = defaultDB
	if err := config.SaveIfMissing(cfgPath, seed); err != nil {
		return "", fmt.Errorf("save config: %w", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return "", err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDB
	}

	a.cfg = cfg
	return cfgPath, nil
}

func (a *app) databasePath() string {
	if a.dataDir != "" {
		return filepath.Join(a.dataDir, dbFileName)
	}
	return a.cfg.DBPath
}

func (a *app) openStore(cmd *cobra.Command) (*db.Store, error) {
	if _, err := a.loadConfig(); err != nil {
		return nil, err
	}

	dbPath := a.databasePath()
	if err := config.EnsureDir(dbPath); err != nil {
		return nil, err
	}

	sqlDB, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	store := db.NewStore(sqlDB)
	store.Now = a.now
	store.Log = log.New(cmd.ErrOrStderr(), "warning: ", 0)
	return store, nil
}

// withStore opens the database for the duration of fn.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, store *db.Store) error) error {
	store, err := a.openStore(cmd)
	if err != nil {
		return err
	}
	defer store.DB.Close()

	return fn(cmd.Context(), store)
}
