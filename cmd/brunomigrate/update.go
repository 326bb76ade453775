package main

import (
	"fmt"
	"os"

	"github.com/blackcoderx/brunomigrate/pkg/tui"
	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
)

const releaseRepo = "blackcoderx/brunomigrate"

func init() {
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update brunomigrate to the latest release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if version == "dev" {
			fmt.Fprintln(out, "You are running a development build. Update is not supported.")
			return nil
		}

		latest, found, err := selfupdate.DetectLatest(releaseRepo)
		if err != nil {
			return fmt.Errorf("detecting latest version: %w", err)
		}

		v, err := semver.ParseTolerant(version)
		if err != nil {
			return fmt.Errorf("parsing current version %q: %w", version, err)
		}

		if !found || latest.Version.LTE(v) {
			fmt.Fprintln(out, "Current version is the latest")
			return nil
		}

		ok, err := tui.Confirm(fmt.Sprintf("Update to %s?", latest.Version))
		if err != nil || !ok {
			return err
		}

		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locating executable: %w", err)
		}
		if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
			return fmt.Errorf("updating binary: %w", err)
		}
		fmt.Fprintln(out, "Successfully updated to version", latest.Version)
		return nil
	},
}
