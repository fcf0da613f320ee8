package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raysh454/hfdl/internal/app"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	var (
		domain   string
		revision string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "generate <hf_path>",
		Short: "Print a download script for one repository",
		Example: `  hfdl generate openai-community/gpt2 > dl.sh
  hfdl generate datasets/rajpurkar/squad --domain hf-mirror.com -o dl.sh`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Verbose, cfg.Log.JSON, "hfdl")

			svc, err := app.NewService(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			t, err := svc.Target(domain, args[0], revision)
			if err != nil {
				return err
			}

			sc, err := svc.Generate(cmd.Context(), t)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), sc.Content)
				return err
			}
			if err := os.WriteFile(output, []byte(sc.Content), 0o755); err != nil { //nolint:gosec // the script is meant to be executed
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d download links for %s to %s\n", len(sc.Links), t, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Mirror domain (default from config, hf-mirror.com)")
	cmd.Flags().StringVar(&revision, "revision", "main", "Branch, tag or commit")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the script to this file instead of stdout")
	addServiceFlags(cmd.Flags())

	return cmd
}
