package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/centum-academy/portal-api/internal/rbac"
)

var rolesVerbose bool

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Print the role registry",
	Run: func(cmd *cobra.Command, args []string) {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ROLE\tNAME\tDASHBOARD")
		for _, e := range rbac.Default().Entries() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Role, e.Name, e.Dashboard)
			if rolesVerbose {
				perms := make([]string, 0, len(e.Permissions))
				for _, p := range e.Permissions {
					perms = append(perms, string(p))
				}
				fmt.Fprintf(tw, "\t\t  %s\n", strings.Join(perms, ", "))
			}
		}
		_ = tw.Flush()
	},
}

func init() {
	rolesCmd.Flags().BoolVarP(&rolesVerbose, "permissions", "p", false, "also list each role's permissions")
}
