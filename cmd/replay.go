package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/pacer/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file.jsonl>",
	Short: "Validate a historical attempt log and feed it to the engine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		records, errs := replay.Decode(f)
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if len(errs) > 0 {
			return fmt.Errorf("%d invalid records in %s", len(errs), args[0])
		}
		if dryRun {
			fmt.Printf("%d records valid\n", len(records))
			return nil
		}

		env, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		sum, err := replay.NewRunner(env.coord, env.log).Run(cmd.Context(), records, time.Now())
		if err != nil {
			return err
		}
		if jsonWanted(cmd) {
			return printJSON(sum)
		}
		fmt.Printf("applied %d attempts for %d learners across %d topics\n",
			sum.Applied, sum.Users, sum.Topics)
		return nil
	},
}

func init() {
	replayCmd.Flags().Bool("dry-run", false, "Validate the file without applying it")
}
