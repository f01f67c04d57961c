package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

var localeCmd = &cobra.Command{
	Use:   "locale [language]",
	Short: "Show or set the preferred language",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), a.locale)
			fmt.Fprintf(cmd.OutOrStdout(), "available: %s\n", strings.Join(a.tr.SupportedLanguages(), ", "))
			return nil
		}

		lang := strings.ToLower(args[0])
		if !slices.Contains(a.tr.SupportedLanguages(), lang) {
			return fmt.Errorf("unsupported language %q (available: %s)", args[0], strings.Join(a.tr.SupportedLanguages(), ", "))
		}
		if err := a.creds.SetLocale(cmd.Context(), lang); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), lang)
		return nil
	},
}
