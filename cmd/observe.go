package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/pacer/internal/engine"
	"github.com/lumenlearn/pacer/internal/learner"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Record an answered question and update the learner models",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		topicID, _ := cmd.Flags().GetString("topic")
		correct, _ := cmd.Flags().GetBool("correct")
		difficulty, _ := cmd.Flags().GetFloat64("difficulty")
		seconds, _ := cmd.Flags().GetFloat64("time")
		signals, _ := cmd.Flags().GetInt("signals")

		env, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		obs, err := env.coord.Observe(cmd.Context(), userID, topicID, learner.Outcome{
			Correct:            correct,
			Difficulty:         difficulty,
			TimeTakenSeconds:   seconds,
			FrustrationSignals: signals,
		}, time.Now())
		if err != nil {
			return err
		}

		if jsonWanted(cmd) {
			return printJSON(obs)
		}
		printObservation(obs)
		return nil
	},
}

func printObservation(obs engine.Observation) {
	fmt.Printf("mastery: %.4f (%s)\n", obs.Mastery.MasteryScore, obs.MasteryLevel)
	fmt.Printf("attempts: %d  correct: %d  accuracy: %.0f%%\n",
		obs.Mastery.AttemptsCount, obs.Mastery.CorrectCount, obs.Mastery.Accuracy()*100)
	if obs.Engagement.Intervention != "" {
		fmt.Printf("engagement: %s, %s\n", obs.Engagement.Status, obs.Engagement.Intervention)
	} else {
		fmt.Printf("engagement: %s\n", obs.Engagement.Status)
	}
	if len(obs.NextSession) > 0 {
		fmt.Printf("next session: %s\n", strings.Join(obs.NextSession, ", "))
	}
}

func init() {
	observeCmd.Flags().String("user", "", "Learner ID")
	observeCmd.Flags().String("topic", "", "Topic ID")
	observeCmd.Flags().Bool("correct", false, "Whether the answer was correct")
	observeCmd.Flags().Float64("difficulty", 0.5, "Difficulty the question was served at, 0 to 1")
	observeCmd.Flags().Float64("time", 30, "Seconds the learner took to answer")
	observeCmd.Flags().Int("signals", 0, "External frustration signals observed")
	_ = observeCmd.MarkFlagRequired("user")
	_ = observeCmd.MarkFlagRequired("topic")
}
