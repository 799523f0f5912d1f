// Package cli implements pizzactl, the operator tool for the storefront.
package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/imrishuroy/royal-pizza/internal/bootstrap"
	"github.com/imrishuroy/royal-pizza/internal/catalog"
	"github.com/imrishuroy/royal-pizza/internal/config"
	"github.com/imrishuroy/royal-pizza/internal/logger"
	"github.com/imrishuroy/royal-pizza/internal/orders"
)

// Backend is what the commands need from a wired application.
type Backend interface {
	Seed(ctx context.Context, force bool) (catalog.SeedResult, error)
	Migrate(ctx context.Context) ([]string, error)
	GetOrder(ctx context.Context, id string) (*orders.Order, error)
	Menu(ctx context.Context) ([]catalog.Pizza, error)
	Close(ctx context.Context) error
}

// Opener builds a Backend from the config file at path.
type Opener func(ctx context.Context, path string) (Backend, error)

func newRootCmd(open Opener) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "pizzactl",
		Short:         "Operate the Royal Pizza storefront",
		Long:          "pizzactl seeds the menu, applies database migrations and inspects orders.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	withBackend := func(cmd *cobra.Command, fn func(ctx context.Context, b Backend) error) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		b, err := open(ctx, configPath)
		if err != nil {
			return err
		}
		defer b.Close(ctx)
		return fn(ctx, b)
	}

	cmd.AddCommand(newSeedCmd(withBackend))
	cmd.AddCommand(newMigrateCmd(withBackend))
	cmd.AddCommand(newOrderCmd(withBackend))
	cmd.AddCommand(newMenuCmd(withBackend))
	return cmd
}

type runner func(cmd *cobra.Command, fn func(ctx context.Context, b Backend) error) error

// NewRootCmdForTest returns the root command wired to open.
func NewRootCmdForTest(open Opener) *cobra.Command {
	return newRootCmd(open)
}

// Execute runs pizzactl against the configured backend.
func Execute() error {
	return newRootCmd(openApp).Execute()
}

type appBackend struct {
	*bootstrap.App
}

func (a appBackend) GetOrder(ctx context.Context, id string) (*orders.Order, error) {
	return a.Service.GetOrder(ctx, id)
}

func (a appBackend) Menu(ctx context.Context) ([]catalog.Pizza, error) {
	return a.Catalog.ListAvailable(ctx)
}

func openApp(ctx context.Context, path string) (Backend, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	// keep stdout for command output
	log := logger.New(cfg.Service+"-cli", cfg.LogLevel).Level(zerolog.WarnLevel)
	app, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return appBackend{app}, nil
}
