package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/pacer/internal/bandit"
	"github.com/lumenlearn/pacer/internal/engine"
	"github.com/lumenlearn/pacer/internal/logging"
	"github.com/lumenlearn/pacer/internal/randvar"
	"github.com/lumenlearn/pacer/internal/simulation"
	"github.com/lumenlearn/pacer/internal/store"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive synthetic learners through the engine and report how it adapted",
	Long: "Simulate runs scripted learner profiles against a fresh in-memory\n" +
		"store: each turn the engine recommends a difficulty and the learner\n" +
		"answers according to a logistic ability model. Runs are deterministic\n" +
		"for a fixed seed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		turns, _ := cmd.Flags().GetInt("turns")
		learners, _ := cmd.Flags().GetInt("learners")
		seed, _ := cmd.Flags().GetUint64("seed")
		withTrajectory, _ := cmd.Flags().GetBool("trajectory")

		if turns <= 0 {
			return fmt.Errorf("turns must be positive, got %d", turns)
		}
		profiles := simulation.DefaultProfiles()
		if learners < 1 || learners > len(profiles) {
			return fmt.Errorf("learners must be between 1 and %d, got %d", len(profiles), learners)
		}
		profiles = profiles[:learners]

		verbose, _ := cmd.Flags().GetBool("verbose")
		log := logging.Nop()
		if verbose {
			var err error
			if log, err = logging.New("development"); err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer log.Sync()
		}

		// The policy and the answer model draw from separate streams so
		// changing one profile's rolls cannot shift the engine's noise.
		coord := engine.New(store.NewMemory(), bandit.NewPolicy(randvar.New(seed)), log)
		sim := simulation.New(coord, randvar.New(seed+1), log, time.Now().UTC())

		res, err := sim.Run(cmd.Context(), profiles, turns)
		if err != nil {
			return err
		}
		if !withTrajectory {
			for i := range res.Learners {
				res.Learners[i].Trajectory = nil
			}
		}

		if jsonWanted(cmd) {
			return printJSON(res)
		}
		printSimulation(res)
		return nil
	},
}

func printSimulation(res simulation.Result) {
	fmt.Printf("%d turns per learner\n", res.Turns)
	for _, l := range res.Learners {
		fmt.Printf("%s (ability %.2f -> %.2f):\n", l.Profile, l.StartAbility, l.FinalAbility)
		fmt.Printf("  mastery %.4f  accuracy %.0f%%  mean difficulty %.2f\n",
			l.FinalMastery, l.CorrectRate*100, l.MeanDifficulty)
		fmt.Printf("  pulls:")
		for _, arm := range bandit.Arms {
			fmt.Printf(" %s %d", arm, l.ArmPulls[string(arm)])
		}
		fmt.Println()
		if l.MasteredAtTurn > 0 {
			fmt.Printf("  mastered at turn %d\n", l.MasteredAtTurn)
		}
	}
}

func init() {
	simulateCmd.Flags().Int("turns", 200, "Questions each learner answers")
	simulateCmd.Flags().Int("learners", 3, "How many of the built-in profiles to run")
	simulateCmd.Flags().Uint64("seed", 1, "Random seed for the run")
	simulateCmd.Flags().Bool("trajectory", false, "Include the full per-turn trajectory in JSON output")
}
