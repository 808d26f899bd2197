// Command heroctl administers the local hero store.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Maximillionair/eksamen-superhelter/internal/config"
	"github.com/Maximillionair/eksamen-superhelter/internal/database"
	"github.com/Maximillionair/eksamen-superhelter/internal/logging"
	"github.com/Maximillionair/eksamen-superhelter/internal/repository"
)

// env is built once per invocation by the root command.
type env struct {
	cfg    *config.Config
	db     *gorm.DB
	heroes *repository.HeroRepository
	users  *repository.UserRepository
	out    io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	e := &env{out: out}

	root := &cobra.Command{
		Use:          "heroctl",
		Short:        "Administer the superhero cache",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.open(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return e.close()
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	root.AddCommand(
		newSeedCmd(e),
		newFetchCmd(e),
		newPruneCmd(e),
		newCheckCmd(e),
		newPromoteCmd(e),
	)
	return root
}

func (e *env) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console", Output: os.Stderr})

	db, _, err := database.ConnectFirst(ctx, cfg.Database.DSN, cfg.Database.FallbackDSNs...)
	if err != nil {
		return err
	}
	if err := repository.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	e.cfg = cfg
	e.db = db
	e.heroes = repository.NewHeroRepository(db, repository.Timeouts{
		Read:  cfg.Database.ReadTimeout,
		Count: cfg.Database.CountTimeout,
		Write: cfg.Database.WriteTimeout,
	})
	e.users = repository.NewUserRepository(db)
	return nil
}

func (e *env) close() error {
	if e.db == nil {
		return nil
	}
	sqlDB, err := e.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (e *env) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e.out, format, args...)
}
