// cmd/supplierctl/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"supplier-portal/internal/common/config"
	apperrors "supplier-portal/internal/common/errors"
	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/common/session"
	"supplier-portal/internal/common/supplierapi"
)

// cliApp is what every subcommand works with once the root has loaded the
// config and opened the session store.
type cliApp struct {
	configPath string
	cfg        *config.Config
	log        logger.Logger
	sess       *session.Session
	client     *supplierapi.Client
	closeStore func() error
	out        io.Writer
}

func (a *cliApp) init(ctx context.Context, out io.Writer) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFromFile(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	a.out = out
	a.log = logger.NewStructured(a.cfg.Logging.Level, "console", "stderr")

	store, closeStore, err := session.Open(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	a.closeStore = closeStore
	a.sess = session.New(store)

	opts := append(supplierapi.OptionsFromConfig(a.cfg.API), supplierapi.WithLogger(a.log))
	a.client = supplierapi.New(a.cfg.API.BaseURL, a.sess, opts...)
	return nil
}

func (a *cliApp) close() error {
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}

func (a *cliApp) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *cliApp) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd() *cobra.Command {
	app := &cliApp{}

	root := &cobra.Command{
		Use:   "supplierctl",
		Short: "Drive the supplier directory from the command line",
		Long: `supplierctl signs suppliers in, walks the profile wizard from a draft
file, browses public business profiles and sends reviews and inquiries.

Sessions live in the store selected by session.driver. Use the redis driver
to keep a login between invocations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd.Context(), cmd.OutOrStdout())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default configs/config.yaml)")

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newRegisterCmd(app),
		newOTPCmd(app),
		newProfileCmd(app),
		newDraftCmd(app),
		newBusinessesCmd(app),
		newReviewCmd(app),
		newInquiryCmd(app),
		newDashboardCmd(app),
		newPartnersCmd(app),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", apperrors.Message(err))
		os.Exit(1)
	}
}
