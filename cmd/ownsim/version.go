package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ownsim/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show ownsim build metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}
			switch strings.ToLower(format) {
			case "json":
				return renderVersionJSON(cmd.OutOrStdout())
			case "pretty":
				colorFlag, _ := cmd.Flags().GetString("color")
				colored := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
				fmt.Fprint(cmd.OutOrStdout(), version.Summary(colored))
				return nil
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}
		},
	}
}

func renderVersionJSON(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(versionPayload{
		Tool:      "ownsim",
		Version:   strings.TrimSpace(version.Version),
		GitCommit: strings.TrimSpace(version.GitCommit),
		BuildDate: strings.TrimSpace(version.BuildDate),
	})
}
