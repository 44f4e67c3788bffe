package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/pacer/internal/bandit"
	"github.com/lumenlearn/pacer/internal/mastery"
)

type topicStats struct {
	State mastery.State `json:"state"`
	Level mastery.Level `json:"level"`
}

type armStats struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Mean  float64 `json:"mean"`
}

type banditStats struct {
	TotalInteractions int                 `json:"totalInteractions"`
	Arms              map[string]armStats `json:"arms"`
}

type statsOutput struct {
	UserID     string                `json:"userId"`
	StreakDays int                   `json:"streakDays"`
	Topics     map[string]topicStats `json:"topics"`
	Bandit     *banditStats          `json:"bandit,omitempty"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show mastery and difficulty-model state for a learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		topicID, _ := cmd.Flags().GetString("topic")

		env, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()
		ctx := cmd.Context()

		states, err := env.backend.Mastery().All(ctx, userID)
		if err != nil {
			return err
		}
		if topicID != "" {
			if st, ok := states[topicID]; ok {
				states = map[string]mastery.State{topicID: st}
			} else {
				states = nil
			}
		}

		out := statsOutput{UserID: userID, Topics: make(map[string]topicStats, len(states))}
		for topic, st := range states {
			out.Topics[topic] = topicStats{State: st, Level: mastery.LevelFor(st.MasteryScore)}
		}

		out.StreakDays, err = env.backend.Attempts().StreakDays(ctx, userID, time.Now())
		if err != nil {
			return err
		}

		model, err := env.backend.Bandits().Load(ctx, userID)
		if err != nil {
			return err
		}
		if model != nil {
			bs := &banditStats{
				TotalInteractions: model.TotalInteractions,
				Arms:              make(map[string]armStats, len(model.Arms)),
			}
			for arm, params := range model.Arms {
				bs.Arms[string(arm)] = armStats{Alpha: params.Alpha, Beta: params.Beta, Mean: params.Mean()}
			}
			out.Bandit = bs
		}

		if jsonWanted(cmd) {
			return printJSON(out)
		}
		printStats(out)
		return nil
	},
}

func printStats(out statsOutput) {
	if len(out.Topics) == 0 {
		fmt.Printf("no topics on record for %s\n", out.UserID)
	}

	topics := make([]string, 0, len(out.Topics))
	for topic := range out.Topics {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	for _, topic := range topics {
		ts := out.Topics[topic]
		fmt.Printf("%s: %.4f (%s)  attempts %d  accuracy %.0f%%\n",
			topic, ts.State.MasteryScore, ts.Level,
			ts.State.AttemptsCount, ts.State.Accuracy()*100)
	}

	if out.Bandit != nil {
		fmt.Printf("difficulty model after %d interactions:\n", out.Bandit.TotalInteractions)
		for _, arm := range bandit.Arms {
			if as, ok := out.Bandit.Arms[string(arm)]; ok {
				fmt.Printf("  %s: Beta(%.2f, %.2f)  mean %.2f\n", arm, as.Alpha, as.Beta, as.Mean)
			}
		}
	}
	fmt.Printf("streak: %d days\n", out.StreakDays)
}

func init() {
	statsCmd.Flags().String("user", "", "Learner ID")
	statsCmd.Flags().String("topic", "", "Limit to one topic")
	_ = statsCmd.MarkFlagRequired("user")
}
