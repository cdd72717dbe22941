package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdesigner/internal/server"
	"github.com/goliatone/go-formdesigner/pkg/auth"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the designer HTTP server",
		Example: `  formdesigner serve --addr :9000
  formdesigner serve --seed designs/contact.yaml --watch --base-path /tools`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(ctx, a.cfg, a.logger, server.WithElements(a.elements))
			if err != nil {
				return err
			}
			a.logger.Info("starting formdesigner",
				zap.String("addr", a.cfg.Server.Addr),
				zap.String("auth", a.cfg.Auth.Mode),
				zap.String("theme", a.cfg.Theme.Default))
			return srv.Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "listen address")
	flags.String("base-path", "", "path prefix the designer is mounted under")
	flags.String("seed", "", "design document every new session starts from")
	flags.Bool("watch", false, "reload the seed design when its file changes")
	flags.String("theme", "", "default theme")
	flags.String("variant", "", "default theme variant (light, dark, system)")
	return cmd
}

func newHashTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-token <token>",
		Short: "Hash a bearer token for auth.tokenHash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if token == "" {
				return fmt.Errorf("token is empty")
			}
			hash, err := auth.HashToken(token)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
