package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vsinha/kitchenplan/pkg/infrastructure/config"
	"github.com/vsinha/kitchenplan/pkg/infrastructure/logging"
	"github.com/vsinha/kitchenplan/pkg/interfaces/cli/output"
)

// rootOptions is the state shared by every subcommand
type rootOptions struct {
	cfgFile string
	format  string
	orgID   string

	v      *viper.Viper
	cfg    *config.Config
	logger *logrus.Logger
	out    io.Writer
}

// NewRootCommand builds the kitchenplan command tree writing results to out
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &rootOptions{v: viper.New(), out: out}

	rootCmd := &cobra.Command{
		Use:   "kitchenplan",
		Short: "Plans ingredient demand and purchase orders for catering events",
		Long: `kitchenplan derives buffered ingredient demand from event menus, checks it against
stock, estimates supplier delivery dates and generates draft purchase orders.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.StringVar(&opts.format, "format", output.FormatText, "Output format: text, json, csv")
	flags.StringVar(&opts.orgID, "org", "", "Organization that owns the event")
	flags.String("log-level", "info", "Log level")
	flags.String("scenario", "", "CSV scenario directory used without a database")
	flags.String("database-url", "", "PostgreSQL connection string")

	opts.v.BindPFlag("log.level", flags.Lookup("log-level"))
	opts.v.BindPFlag("scenario.dir", flags.Lookup("scenario"))
	opts.v.BindPFlag("database.url", flags.Lookup("database-url"))

	rootCmd.AddCommand(
		newDemandCommand(opts),
		newGenerateCommand(opts),
		newStockCommand(opts),
		newDeliveryCommand(opts),
		newServeCommand(opts),
		newMigrateCommand(opts),
		newSeedCommand(opts),
	)

	return rootCmd
}

// Execute runs the command tree against os.Args
func Execute() {
	if err := NewRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *rootOptions) init() error {
	cfg, err := config.Load(o.v, o.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = logger
	return nil
}

func (o *rootOptions) printer() (*output.Printer, error) {
	return output.NewPrinter(o.out, o.format)
}

func (o *rootOptions) requireOrg() error {
	if o.orgID == "" {
		return fmt.Errorf("--org is required")
	}
	return nil
}

func (o *rootOptions) newApp(ctx context.Context) (*App, error) {
	return NewApp(ctx, o.cfg, o.logger)
}
