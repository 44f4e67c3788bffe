package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete learner state",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to delete state without --yes")
		}
		userID, _ := cmd.Flags().GetString("user")

		env, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if userID == "" {
			if err := env.backend.ResetAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("all learner state deleted")
			return nil
		}
		if err := env.backend.Reset(cmd.Context(), userID); err != nil {
			return err
		}
		fmt.Printf("state for %s deleted\n", userID)
		return nil
	},
}

func init() {
	resetCmd.Flags().String("user", "", "Limit the reset to one learner (default: everyone)")
	resetCmd.Flags().Bool("yes", false, "Confirm the deletion")
}
