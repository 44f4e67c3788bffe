package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/pacer/internal/engine"
	"github.com/lumenlearn/pacer/internal/mastery"
)

// degradedDifficulty is served when the engine cannot produce a real
// recommendation and the caller asked to stay up anyway.
const degradedDifficulty = 0.5

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Pick the next question difficulty for a learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		topicID, _ := cmd.Flags().GetString("topic")

		env, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.coord.Recommend(cmd.Context(), userID, topicID, time.Now())
		if err != nil {
			degradedOK, _ := cmd.Flags().GetBool("degraded-ok")
			if !degradedOK {
				return err
			}
			env.log.Error("serving degraded recommendation", "error", err,
				"userId", userID, "topicId", topicID)
			rec = engine.Recommendation{
				UserID:                userID,
				TopicID:               topicID,
				RecommendedDifficulty: degradedDifficulty,
				MasteryInsights:       mastery.Insights(mastery.NewState()),
				ContextFactors: engine.ContextFactors{
					EngagementLevel:             0.5,
					OptimalSessionLengthMinutes: 15,
				},
			}
		}

		if jsonWanted(cmd) {
			return printJSON(rec)
		}
		printRecommendation(rec)
		return nil
	},
}

func printRecommendation(rec engine.Recommendation) {
	in := rec.MasteryInsights
	fmt.Printf("difficulty: %.2f\n", rec.RecommendedDifficulty)
	fmt.Printf("level: %s (confidence %.0f%%)\n", in.Level, in.Confidence*100)
	fmt.Printf("predicted success: %.0f%%\n", in.PredictedSuccessRate*100)
	fmt.Printf("engagement: %.2f  fatigue: %v\n",
		rec.ContextFactors.EngagementLevel, rec.ContextFactors.FatigueDetected)
	fmt.Printf("session: %d min\n", rec.ContextFactors.OptimalSessionLengthMinutes)
	if len(in.Strengths) > 0 {
		fmt.Printf("strengths: %s\n", strings.Join(in.Strengths, "; "))
	}
	if len(in.ImprovementAreas) > 0 {
		fmt.Printf("work on: %s\n", strings.Join(in.ImprovementAreas, "; "))
	}
}

func init() {
	recommendCmd.Flags().String("user", "", "Learner ID")
	recommendCmd.Flags().String("topic", "", "Topic ID")
	recommendCmd.Flags().Bool("degraded-ok", false, "Serve a neutral difficulty if the engine fails")
	_ = recommendCmd.MarkFlagRequired("user")
	_ = recommendCmd.MarkFlagRequired("topic")
}
