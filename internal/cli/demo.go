package cli

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"trivia-party-service/internal/domain"
	"trivia-party-service/internal/game"
	"trivia-party-service/internal/infra/memory"
	"trivia-party-service/internal/quiz"
)

// NewDemoCmd plays a scripted game against a built-in question set and
// prints every phase, handy for eyeballing the flow without a server.
func NewDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Play a scripted demo game in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context())
		},
	}
}

func runDemo(ctx context.Context) error {
	engine := quiz.NewEngine(memory.NewStaticSource(demoQuestions()))
	g := game.NewGame(engine, domain.GameOptions{
		MinPlayers: 2,
		MaxPlayers: 8,
		MinRounds:  2,
		MaxRounds:  2,
	})

	for _, name := range []string{"Ada", "Linus"} {
		player, err := g.AddPlayer(name)
		if err != nil {
			return err
		}
		fmt.Printf("%s joined (avatar %s)\n", player.Name, domain.AvatarURL(player.AvatarSeed))
	}

	if !g.Start(ctx) {
		return fmt.Errorf("demo game failed to start")
	}

	for {
		state := g.State()
		if state.Status != domain.StatusPlaying {
			break
		}
		fmt.Printf("\nround %d/%d — %s's turn\n", state.CurrentRound, state.TotalRounds, state.CurrentPlayer)
		if state.Question == nil {
			return fmt.Errorf("no question available")
		}
		fmt.Printf("  %s [%s]\n", state.Question.Text, state.Question.Tier)
		for i, option := range state.Question.Options {
			fmt.Printf("    %c) %s\n", 'A'+i, option)
		}

		pick := string(rune('A' + rand.Intn(len(state.Question.Options))))
		result := g.SubmitAnswer(state.CurrentPlayer, pick)
		if !result.Valid {
			return fmt.Errorf("demo answer rejected")
		}
		if result.Correct {
			fmt.Printf("  %s picked %s: correct, +%d (total %d)\n", result.Player, pick, result.Points, result.TotalScore)
		} else {
			fmt.Printf("  %s picked %s: wrong, the answer was %q\n", result.Player, pick, result.CorrectAnswer)
		}

		if !g.Continue(ctx) {
			return fmt.Errorf("demo game stuck in feedback")
		}
	}

	fmt.Println("\nfinal standings:")
	for i, entry := range g.State().Leaderboard {
		fmt.Printf("  %d. %s — %s\n", i+1, entry.Name, entry.Score)
	}
	return nil
}

func demoQuestions() []domain.RawQuestion {
	return []domain.RawQuestion{
		{
			Question:   "Quelle est la capitale de la France ?",
			Answer:     "Paris",
			BadAnswers: []string{"Lyon", "Marseille", "Lille"},
			Category:   "culture_generale",
		},
		{
			Question:   "Combien de joueurs composent une equipe de football ?",
			Answer:     "11",
			BadAnswers: []string{"9", "10", "12"},
			Category:   "sport",
		},
		{
			Question:   "Quel est le plus grand ocean du monde ?",
			Answer:     "Pacifique",
			BadAnswers: []string{"Atlantique", "Indien", "Arctique"},
			Category:   "culture_generale",
		},
		{
			Question:   "En quelle annee a eu lieu la Revolution francaise ?",
			Answer:     "1789",
			BadAnswers: []string{"1776", "1804", "1815"},
			Category:   "culture_generale",
		},
	}
}
