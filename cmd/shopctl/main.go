// Command shopctl browses the catalog and manages a storefront session from
// the terminal. State is shared with the server through the configured
// storage driver, SQLite by default.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/app"
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// defaultSession is used when neither --session nor STOREFRONT_SESSION is set.
const defaultSession = "cli"

// shell holds the services a command runs against. Tests inject them
// directly; otherwise open builds them from configuration.
type shell struct {
	sessions *session.Manager
	catalog  *catalog.Service
	checkout *checkout.Service
	logger   *slog.Logger
	close    func()

	sessionID string
	asJSON    bool
	noColor   bool
}

func (sh *shell) open(ctx context.Context) error {
	if sh.sessions != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.NewText(cfg.LogLevel, os.Stderr)
	sh.logger = log

	kv, closeStorage, err := app.OpenStorage(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	closers := []func(){closeStorage}

	source, err := app.NewCatalogSource(cfg, log, nil)
	if err != nil {
		closeStorage()
		return err
	}

	var submitter checkout.Submitter = checkout.LocalSubmitter{}
	if cfg.OrderSubmitter == config.SubmitterKafka {
		producer := kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), log, nil)
		closers = append(closers, func() { _ = producer.Close() })
		submitter = event.NewOrderSubmitter(event.NewProducer(producer, log))
	}

	sh.sessions = session.NewManager(kv, log, nil, cfg.SessionLimits())
	sh.catalog = catalog.NewService(source, log)
	sh.checkout = checkout.NewService(submitter, cfg.Pricing(), log)
	sh.close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return nil
}

func (sh *shell) store(ctx context.Context) (*session.Store, error) {
	return sh.sessions.Get(ctx, sh.sessionID)
}

func newRootCmd(sh *shell) *cobra.Command {
	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Browse the storefront catalog and manage a shopping session",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if sh.noColor {
				color.NoColor = true
			}
			if err := session.ValidateID(sh.sessionID); err != nil {
				return fmt.Errorf("invalid --session: %w", err)
			}
			return sh.open(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if sh.close != nil {
				sh.close()
			}
		},
	}

	sessionDefault := os.Getenv("STOREFRONT_SESSION")
	if sessionDefault == "" {
		sessionDefault = defaultSession
	}
	root.PersistentFlags().StringVarP(&sh.sessionID, "session", "s", sessionDefault, "Session id (env STOREFRONT_SESSION)")
	root.PersistentFlags().BoolVar(&sh.asJSON, "json", false, "Output as JSON")
	root.PersistentFlags().BoolVar(&sh.noColor, "no-color", false, "Disable colored output")

	root.AddGroup(
		&cobra.Group{ID: "catalog", Title: "Catalog:"},
		&cobra.Group{ID: "session", Title: "Session:"},
	)

	for _, c := range []*cobra.Command{productsCmd(sh), productCmd(sh), categoriesCmd(sh)} {
		c.GroupID = "catalog"
		root.AddCommand(c)
	}
	for _, c := range []*cobra.Command{cartCmd(sh), wishlistCmd(sh), checkoutCmd(sh)} {
		c.GroupID = "session"
		root.AddCommand(c)
	}
	return root
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(&shell{})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, color.RedString("Error:"), err)
		return 1
	}
	return 0
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
