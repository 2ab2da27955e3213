package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/centum-academy/portal-api/internal/utils"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Generate a random SESSION_SECRET value",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(utils.RandomToken())
	},
}
