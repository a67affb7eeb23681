package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/wastehub/internal/client/client"
	"github.com/dmitrijs2005/wastehub/internal/client/config"
)

type App struct {
	out       io.Writer
	lookupEnv func(string) (string, bool)
	isTTY     func(io.Writer) bool
	newClient func(cfg *config.Config) (client.Client, error)

	configPath string
	server     string
	admin      string
	jsonOut    bool

	cfg    *config.Config
	client client.Client
}

func NewApp() *App {
	return &App{
		out:       os.Stdout,
		lookupEnv: os.LookupEnv,
		isTTY:     isTerminal,
		newClient: func(cfg *config.Config) (client.Client, error) {
			return client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout)
		},
	}
}

// Run executes the command line in args (without the program name).
func (a *App) Run(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wastectl",
		Short:         "WasteHub admin tool",
		Long:          "wastectl reviews waste deposits and inspects credit ledgers on a WasteHub server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(a.out)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "JSON config file")
	root.PersistentFlags().StringVar(&a.server, "server", "", fmt.Sprintf("server base URL (env %s)", config.EnvServer))
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print JSON even on a terminal")

	root.AddCommand(a.pendingCmd())
	root.AddCommand(a.summaryCmd())
	root.AddCommand(a.verifyCmd())
	root.AddCommand(a.rejectCmd())
	root.AddCommand(a.hubsCmd())
	root.AddCommand(a.ledgerCmd())
	return root
}

// setup resolves the config (flags win over env, env over file) and dials
// the server client.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath, a.lookupEnv)
	if err != nil {
		return err
	}
	if a.server != "" {
		cfg.ServerURL = a.server
	}
	a.cfg = cfg

	c, err := a.newClient(cfg)
	if err != nil {
		return err
	}
	a.client = c
	return nil
}

// adminID returns the --admin flag value or the configured default.
func (a *App) adminID() (string, error) {
	if a.admin != "" {
		return a.admin, nil
	}
	if a.cfg != nil && a.cfg.AdminID != "" {
		return a.cfg.AdminID, nil
	}
	return "", fmt.Errorf("admin id required: pass --admin or set %s", config.EnvAdmin)
}

// ErrorText renders a command failure for stderr, with a hint when the
// server could not be reached at all.
func ErrorText(err error) string {
	if client.IsUnavailable(err) {
		return fmt.Sprintf("%v\nhint: server unreachable, check --server or %s", err, config.EnvServer)
	}
	return err.Error()
}
