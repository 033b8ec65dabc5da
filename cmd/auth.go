package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/expense-bot/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Gateway credential helpers",
}

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key [api-key]",
	Short: "Print the bcrypt hash to store in security.gateway_key_hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashKey(args[0])
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	authCmd.AddCommand(hashKeyCmd)
}
