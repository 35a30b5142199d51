package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Administrative user operations",
}

var userBlockCmd = &cobra.Command{
	Use:   "block <email>",
	Short: "Deactivate an account; it can no longer register or authenticate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.accounts(nil).Block(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "blocked %s\n", args[0])
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user with its tweets, likes and follow edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.accounts(nil).DeleteUser(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted user %d\n", id)
		return nil
	},
}

func init() {
	userCmd.AddCommand(userBlockCmd, userDeleteCmd)
	rootCmd.AddCommand(userCmd)
}
