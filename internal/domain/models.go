package domain

import (
	"net/url"
	"strconv"
)

// Tier classifies a question's difficulty and fixes its score multiplier.
type Tier string

const (
	TierEasy   Tier = "easy"
	TierNormal Tier = "normal"
	TierHard   Tier = "hard"
)

// Multiplier returns the fixed score multiplier for the tier.
// Unknown tiers score nothing but remain usable.
func (t Tier) Multiplier() int {
	switch t {
	case TierEasy:
		return 1
	case TierNormal:
		return 2
	case TierHard:
		return 3
	default:
		return 0
	}
}

// PointsPerCorrect is the base award before the tier multiplier is applied.
const PointsPerCorrect = 10

// TimeoutAnswer is the sentinel submitted by callers when a player's time
// runs out. It can never equal a real option, so it always scores as wrong.
const TimeoutAnswer = "__timeout__"

// MaskedScore replaces real scores in leaderboard snapshots while the
// blind phase is active.
const MaskedScore = "???"

// RawQuestion is a record as returned by a question source.
type RawQuestion struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	BadAnswers []string `json:"badAnswers"`
	Category   string   `json:"category,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
}

// Question is an immutable, typed question owned by a single game.
type Question struct {
	Text       string   `json:"text"`
	Answer     string   `json:"answer"`
	Options    []string `json:"options"`
	Tier       Tier     `json:"tier"`
	Multiplier int      `json:"multiplier"`
}

// QuestionView is the question as shown to players: no correct answer.
type QuestionView struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Tier    Tier     `json:"tier"`
}

// View strips the correct answer for client consumption.
func (q Question) View() QuestionView {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return QuestionView{Text: q.Text, Options: options, Tier: q.Tier}
}

// Player is one participant in a game. Join order is turn order.
type Player struct {
	Name         string `json:"name"`
	Score        int    `json:"score"`
	SessionToken string `json:"sessionToken"`
	AvatarSeed   string `json:"avatarSeed"`
}

// AvatarURL derives the deterministic avatar image URL for a seed.
func AvatarURL(seed string) string {
	return "https://api.dicebear.com/7.x/pixel-art/svg?seed=" + url.QueryEscape(seed)
}

// GameStatus is the phase of a game's state machine.
type GameStatus string

const (
	StatusLobby    GameStatus = "lobby"
	StatusPlaying  GameStatus = "playing"
	StatusFeedback GameStatus = "feedback"
	StatusFinished GameStatus = "finished"
)

// DifficultyRatios are the weights used to pick a tier each turn.
// All-zero ratios fall back to an equal three-way split.
type DifficultyRatios struct {
	Easy   int `json:"easy" yaml:"easy"`
	Normal int `json:"normal" yaml:"normal"`
	Hard   int `json:"hard" yaml:"hard"`
}

// GameOptions is the configuration block applied before a game starts.
type GameOptions struct {
	MinPlayers       int              `json:"minPlayers" yaml:"min_players"`
	MaxPlayers       int              `json:"maxPlayers" yaml:"max_players"`
	MinRounds        int              `json:"minRounds" yaml:"min_rounds"`
	MaxRounds        int              `json:"maxRounds" yaml:"max_rounds"`
	TimeLimitSeconds int              `json:"timeLimitSeconds" yaml:"time_limit_seconds"`
	DifficultyRatios DifficultyRatios `json:"difficultyRatios" yaml:"difficulty_ratios"`
	AutoAdvance      bool             `json:"autoAdvance" yaml:"auto_advance"`
	Categories       []string         `json:"categories" yaml:"categories"`
}

// AnswerResult summarizes the outcome of one submitted answer.
type AnswerResult struct {
	Player        string `json:"player"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	Points        int    `json:"points"`
	TotalScore    int    `json:"totalScore"`
}

// SubmitResult is the structured reply to a submission. Valid is false when
// the operation was rejected for the current state (wrong phase, wrong
// player, no question); the embedded result is only meaningful when true.
type SubmitResult struct {
	Valid bool `json:"valid"`
	AnswerResult
}

// LeaderboardEntry is a display row. Score is a string so the blind phase
// can substitute MaskedScore without changing the shape of the payload.
type LeaderboardEntry struct {
	Name      string `json:"name"`
	Score     string `json:"score"`
	AvatarURL string `json:"avatarUrl"`
}

// FormatScore renders a real score for a leaderboard row.
func FormatScore(score int) string {
	return strconv.Itoa(score)
}

// GameState is the consistent snapshot served to displays and players.
type GameState struct {
	Status           GameStatus         `json:"status"`
	CurrentRound     int                `json:"currentRound"`
	TotalRounds      int                `json:"totalRounds"`
	CurrentPlayer    string             `json:"currentPlayer,omitempty"`
	Question         *QuestionView      `json:"question,omitempty"`
	LastResult       *AnswerResult      `json:"lastResult,omitempty"`
	Leaderboard      []LeaderboardEntry `json:"leaderboard"`
	BlindPhase       bool               `json:"blindPhase"`
	TimeLimitSeconds int                `json:"timeLimitSeconds"`
	AutoAdvance      bool               `json:"autoAdvance"`
	PlayerCount      int                `json:"playerCount"`
}
