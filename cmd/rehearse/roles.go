package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/rehearse/internal/interview"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the roles that can be practiced",
	RunE: func(cmd *cobra.Command, _ []string) error {
		verbose, _ := cmd.Flags().GetBool("questions")

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tTITLE\tDESCRIPTION")
		for _, role := range interview.Roles {
			cfg, err := interview.Config(role)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", role, cfg.Title, cfg.Description)
			if verbose {
				for i, q := range cfg.Questions {
					fmt.Fprintf(w, "\t%d. %s\t\n", i+1, q)
				}
			}
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)

	rolesCmd.Flags().BoolP("questions", "q", false, "also print each role's scripted questions")
}
