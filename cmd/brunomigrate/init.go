package main

import (
	"errors"
	"fmt"

	"github.com/blackcoderx/brunomigrate/pkg/config"
	"github.com/blackcoderx/brunomigrate/pkg/storage"
	"github.com/blackcoderx/brunomigrate/pkg/tui"
	"github.com/spf13/cobra"
)

var forceInit bool

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing env file without asking")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a .env file and create the output folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if storage.Exists(envFile) && !forceInit {
			ok, err := tui.Confirm(fmt.Sprintf("%s already exists. Overwrite it?", envFile))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, tui.DimStyle.Render("Left "+envFile+" unchanged."))
				return nil
			}
		}

		if err := tui.RunSetupWizard(a.cfg); err != nil {
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(out, tui.DimStyle.Render("Setup cancelled."))
				return nil
			}
			return err
		}

		if err := config.WriteDotEnv(envFile, a.cfg.DotEnv()); err != nil {
			return err
		}
		for _, dir := range []string{a.cfg.PostmanDir(), a.cfg.BrunoDir(), a.cfg.ProjectsDir()} {
			if err := storage.EnsureDirectory(dir); err != nil {
				return err
			}
		}

		fmt.Fprintln(out, tui.SuccessStyle.Render(tui.OKPrefix)+tui.TextStyle.Render("wrote "+envFile))
		fmt.Fprintln(out, tui.SuccessStyle.Render(tui.OKPrefix)+tui.TextStyle.Render("created folders under "+a.cfg.OutputDir))
		return nil
	},
}
