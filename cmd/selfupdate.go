package cmd

import (
	"fmt"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// updateRepoSlug is the GitHub repository releases are fetched from.
const updateRepoSlug = "opensearch-tools/mcp-opensearch"

// newSelfUpdateCmd creates the Cobra command for updating the binary to the
// latest GitHub release.
func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update mcp-opensearch to the latest version",
		Long:  `Downloads the latest release of mcp-opensearch from GitHub and replaces the current binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfUpdate(cmd)
		},
	}
}

func runSelfUpdate(cmd *cobra.Command) error {
	version := rootCmd.Version
	if version == "" || version == "dev" {
		return fmt.Errorf("cannot self-update a development version, please download a release build")
	}

	ctx := cmd.Context()

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(updateRepoSlug))
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for %s could not be found from github repository %s",
			version, updateRepoSlug)
	}

	if latest.LessOrEqual(version) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Current version (%s) is the latest\n", version)
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updating to version %s...\n", latest.Version())
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully updated to version %s\n", latest.Version())
	return nil
}
