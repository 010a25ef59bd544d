// Package commands implements the distcalc command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/mpz/devops/tools/value-distribution/internal/config"
	"github.com/mpz/devops/tools/value-distribution/internal/numfmt"
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var (
		locale    string
		formatter *numfmt.Formatter
	)

	root := &cobra.Command{
		Use:           "distcalc",
		Short:         "Split a value into percentage distributions",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				cmd.PrintErrln("warning:", err)
			}

			if locale == "" {
				cfg, err := config.NewConfig()
				if err != nil {
					return err
				}
				locale = cfg.Locale
			}

			f, err := numfmt.New(locale)
			if err != nil {
				return err
			}
			formatter = f
			return nil
		},
	}

	root.PersistentFlags().StringVar(&locale, "locale", "", "locale for amounts (default $APP_LOCALE or id)")

	root.AddCommand(splitCmd(func() *numfmt.Formatter { return formatter }))
	return root
}
