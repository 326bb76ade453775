package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/blackcoderx/brunomigrate/pkg/config"
	"github.com/blackcoderx/brunomigrate/pkg/exporter"
	"github.com/blackcoderx/brunomigrate/pkg/httpclient"
	"github.com/blackcoderx/brunomigrate/pkg/logging"
	"github.com/blackcoderx/brunomigrate/pkg/postman"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	envFile string
	rootCmd = &cobra.Command{
		Use:   "brunomigrate",
		Short: "Migrate Postman workspaces to Bruno",
		Long: `brunomigrate exports Postman workspaces, collections, environments and
global variables to JSON files, converts them to Bruno's import format and
can drive the bru CLI to generate Bruno projects.

Without a subcommand the stages enabled in the environment run in order:
get_workspace_list, export_postman_workspaces, convert_to_bruno_import_format,
import_to_bruno.`,
		SilenceUsage: true,
		RunE:         runPipeline,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, JSON or TOML)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load")
	rootCmd.PersistentFlags().String("output-dir", config.DefaultOutputDir, "root directory for all generated files")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("skip-existing", false, "leave already exported files untouched")

	rootCmd.Flags().Bool("list", false, "fetch the workspace list")
	rootCmd.Flags().Bool("export", false, "export every listed workspace")
	rootCmd.Flags().Bool("convert", false, "convert exported files to Bruno format")
	rootCmd.Flags().Bool("import", false, "generate Bruno projects with the bru CLI")

	bindFlag(rootCmd.PersistentFlags().Lookup("output-dir"), config.KeyOutputDir)
	bindFlag(rootCmd.PersistentFlags().Lookup("log-level"), config.KeyLogLevel)
	bindFlag(rootCmd.PersistentFlags().Lookup("skip-existing"), config.KeySkipAlreadyExported)
	bindFlag(rootCmd.Flags().Lookup("list"), config.KeyGetWorkspaceList)
	bindFlag(rootCmd.Flags().Lookup("export"), config.KeyExportWorkspaces)
	bindFlag(rootCmd.Flags().Lookup("convert"), config.KeyConvertToBruno)
	bindFlag(rootCmd.Flags().Lookup("import"), config.KeyImportToBruno)
}

// bindFlag lets a command-line flag override the configuration key when set.
func bindFlag(flag *pflag.Flag, key string) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag.Name, err))
	}
}

func initConfig() {
	// Load .env file if it exists (optional, warn if malformed)
	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if err := config.Bind(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfgFile != "" {
		if err := config.ReadFile(viper.GetViper(), cfgFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// app holds what every command builds from the configuration.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newApp() (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logging.New(os.Stderr, cfg.LogLevel)}, nil
}

func (a *app) service() *postman.Service {
	client := httpclient.New(
		httpclient.WithBearerToken(a.cfg.APIKey),
		httpclient.WithTimeout(a.cfg.HTTPTimeout),
		httpclient.WithLogger(a.logger),
	)
	return postman.NewService(client, a.cfg.APIURL, a.logger)
}

func (a *app) exporter() *exporter.Exporter {
	return exporter.New(exporter.Options{
		BaseDir:             a.cfg.PostmanDir(),
		StatusPath:          a.cfg.StatusPath(),
		SkipAlreadyExported: a.cfg.SkipAlreadyExported,
	}, a.service(), a.logger)
}

// runPipeline runs every enabled stage in order and stops at the first
// stage that fails.
func runPipeline(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if !a.cfg.AnyStage() {
		fmt.Fprintln(cmd.ErrOrStderr(), "No stage enabled. Set get_workspace_list, export_postman_workspaces,")
		fmt.Fprintln(cmd.ErrOrStderr(), "convert_to_bruno_import_format or import_to_bruno to \"true\", or run a subcommand.")
		return cmd.Help()
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if a.cfg.GetWorkspaceList {
		if err := runWorkspaces(ctx, a, out); err != nil {
			return err
		}
	}
	if a.cfg.ExportWorkspaces {
		if err := runExport(ctx, a, out); err != nil {
			return err
		}
	}
	if a.cfg.ConvertToBruno {
		if err := runConvert(ctx, a, out, false); err != nil {
			return err
		}
	}
	if a.cfg.ImportToBruno {
		if err := runImport(ctx, a, out, nil); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
