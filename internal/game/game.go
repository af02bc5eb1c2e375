package game

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"

	"trivia-party-service/internal/domain"
	"trivia-party-service/internal/quiz"
)

// Game is the turn-based engine for one party. All mutating operations are
// serialized by a per-game mutex; the question source call is made outside
// the lock so a slow upstream never blocks state reads or other sessions.
type Game struct {
	engine *quiz.Engine

	mu              sync.Mutex
	opts            domain.GameOptions
	status          domain.GameStatus
	players         []*domain.Player
	currentIdx      int
	currentRound    int
	roundsResolved  int
	currentQuestion *domain.Question
	lastResult      *domain.AnswerResult

	// turnSeq invalidates in-flight question fetches after stop/reset.
	turnSeq uint64

	watchers map[chan domain.GameState]struct{}
}

func NewGame(engine *quiz.Engine, opts domain.GameOptions) *Game {
	return &Game{
		engine:   engine,
		opts:     opts,
		status:   domain.StatusLobby,
		watchers: make(map[chan domain.GameState]struct{}),
	}
}

// Configure stores the game options. Callers are expected to do this before
// Start; a later call simply overwrites (last write wins).
func (g *Game) Configure(opts domain.GameOptions) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.opts = opts
	g.broadcastLocked()
}

// Options returns the currently configured options.
func (g *Game) Options() domain.GameOptions {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.opts
}

// AddPlayer registers a player at the end of the turn order. Joining with a
// name that already exists returns the existing player unchanged, so client
// retries are harmless. The UI only offers joining during the lobby, but the
// game itself does not reject later joins.
func (g *Game) AddPlayer(name string) (domain.Player, error) {
	if name == "" {
		return domain.Player{}, domain.ErrNameRequired
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, p := range g.players {
		if p.Name == name {
			return *p, nil
		}
	}

	if g.opts.MaxPlayers > 0 && len(g.players) >= g.opts.MaxPlayers {
		return domain.Player{}, domain.ErrGameFull
	}

	player := &domain.Player{
		Name:         name,
		SessionToken: uuid.NewString(),
		AvatarSeed:   newAvatarSeed(name),
	}
	g.players = append(g.players, player)
	g.broadcastLocked()
	return *player, nil
}

// RerollAvatar regenerates the avatar seed for the named player.
func (g *Game) RerollAvatar(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, p := range g.players {
		if p.Name == name {
			p.AvatarSeed = newAvatarSeed(name)
			g.broadcastLocked()
			return true
		}
	}
	return false
}

// Player returns a copy of the named player.
func (g *Game) Player(name string) (domain.Player, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, p := range g.players {
		if p.Name == name {
			return *p, true
		}
	}
	return domain.Player{}, false
}

// Start moves the game from the lobby into its first turn. It reports false
// when the game already started or too few players have joined. The total
// round count is drawn once, uniformly from the configured bounds.
func (g *Game) Start(ctx context.Context) bool {
	g.mu.Lock()
	if g.status != domain.StatusLobby || len(g.players) < g.minPlayersLocked() {
		g.mu.Unlock()
		return false
	}

	minRounds, maxRounds := g.opts.MinRounds, g.opts.MaxRounds
	if minRounds < 1 {
		minRounds = 1
	}
	if maxRounds < minRounds {
		maxRounds = minRounds
	}
	g.roundsResolved = minRounds + rand.Intn(maxRounds-minRounds+1)
	g.currentRound = 1
	g.currentIdx = 0

	seq, tier, categories := g.beginTurnLocked()
	g.mu.Unlock()

	g.fetchQuestion(ctx, seq, tier, categories)
	return true
}

// SubmitAnswer scores the current player's answer and moves the game into
// the feedback phase, correct or not. Any submission that is out of phase,
// from the wrong player, or arrives while no question is loaded is rejected
// with Valid=false and no state change. Single letters A-D are resolved to
// the matching option before comparison.
func (g *Game) SubmitAnswer(name, answer string) domain.SubmitResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != domain.StatusPlaying || g.currentQuestion == nil {
		return domain.SubmitResult{}
	}
	if g.currentIdx >= len(g.players) || g.players[g.currentIdx].Name != name {
		return domain.SubmitResult{}
	}

	player := g.players[g.currentIdx]
	answer = g.resolveOptionLocked(answer)

	points := 0
	correct := answer == g.currentQuestion.Answer
	if correct {
		points = g.currentQuestion.Multiplier * domain.PointsPerCorrect
		player.Score += points
	}

	g.lastResult = &domain.AnswerResult{
		Player:        player.Name,
		Correct:       correct,
		CorrectAnswer: g.currentQuestion.Answer,
		Points:        points,
		TotalScore:    player.Score,
	}
	g.status = domain.StatusFeedback
	g.broadcastLocked()

	return domain.SubmitResult{Valid: true, AnswerResult: *g.lastResult}
}

// Continue leaves the feedback phase: next player's turn, next round when the
// order wraps, or Finished after the last turn of the last round.
func (g *Game) Continue(ctx context.Context) bool {
	g.mu.Lock()
	if g.status != domain.StatusFeedback {
		g.mu.Unlock()
		return false
	}

	g.currentIdx++
	if g.currentIdx >= len(g.players) {
		if g.currentRound >= g.roundsResolved {
			g.finishLocked()
			g.mu.Unlock()
			return true
		}
		g.currentRound++
		g.currentIdx = 0
	}

	seq, tier, categories := g.beginTurnLocked()
	g.mu.Unlock()

	g.fetchQuestion(ctx, seq, tier, categories)
	return true
}

// Stop force-finishes the game from any state.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.finishLocked()
}

// Reset returns the game to a fresh lobby, dropping all players.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.turnSeq++
	g.status = domain.StatusLobby
	g.players = nil
	g.currentIdx = 0
	g.currentRound = 0
	g.roundsResolved = 0
	g.currentQuestion = nil
	g.lastResult = nil
	g.broadcastLocked()
}

// IsFinished reports whether the game reached its terminal state.
func (g *Game) IsFinished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status == domain.StatusFinished
}

// State returns a consistent snapshot for displays and players.
func (g *Game) State() domain.GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// Watch subscribes to state snapshots pushed after every mutation. The
// caller must invoke the cancel function to avoid leaks.
func (g *Game) Watch() (<-chan domain.GameState, func()) {
	ch := make(chan domain.GameState, 8)

	g.mu.Lock()
	g.watchers[ch] = struct{}{}
	initial := g.snapshotLocked()
	g.mu.Unlock()

	ch <- initial

	cancel := func() {
		g.mu.Lock()
		if _, ok := g.watchers[ch]; ok {
			delete(g.watchers, ch)
			close(ch)
		}
		g.mu.Unlock()
	}
	return ch, cancel
}

func (g *Game) minPlayersLocked() int {
	if g.opts.MinPlayers < 1 {
		return 1
	}
	return g.opts.MinPlayers
}

// beginTurnLocked flips the game into the playing phase for a fresh turn and
// invalidates any fetch still in flight for a previous one.
func (g *Game) beginTurnLocked() (uint64, domain.Tier, []string) {
	g.turnSeq++
	g.status = domain.StatusPlaying
	g.currentQuestion = nil
	g.lastResult = nil
	g.broadcastLocked()

	categories := append([]string(nil), g.opts.Categories...)
	return g.turnSeq, quiz.PickTier(g.opts.DifficultyRatios), categories
}

// fetchQuestion runs the blocking source call without holding the game lock,
// then installs the question only if the turn is still the current one. When
// the source yields nothing the turn stays question-less: submissions keep
// failing the state check and the session stalls until stopped or deleted.
func (g *Game) fetchQuestion(ctx context.Context, seq uint64, tier domain.Tier, categories []string) {
	question, err := g.engine.GenerateSingle(ctx, tier, categories)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.turnSeq != seq || g.status != domain.StatusPlaying {
		return
	}
	if err == nil {
		g.currentQuestion = &question
	}
	g.broadcastLocked()
}

func (g *Game) finishLocked() {
	g.turnSeq++
	g.status = domain.StatusFinished
	g.currentQuestion = nil
	g.broadcastLocked()
}

func (g *Game) resolveOptionLocked(answer string) string {
	if len(answer) != 1 {
		return answer
	}
	c := answer[0]
	if c >= 'a' && c <= 'd' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'D' {
		return answer
	}
	idx := int(c - 'A')
	if idx >= len(g.currentQuestion.Options) {
		return answer
	}
	return g.currentQuestion.Options[idx]
}

// blindLocked reports whether the leaderboard must be obfuscated: past the
// midpoint of a running game, until it finishes.
func (g *Game) blindLocked() bool {
	if g.status != domain.StatusPlaying && g.status != domain.StatusFeedback {
		return false
	}
	return g.roundsResolved > 0 && g.currentRound > g.roundsResolved/2
}

// leaderboardLocked builds the display rows. The real ranking sorts by score
// descending with ties kept in join order; the blind phase instead shuffles
// the rows and masks every score. Neither variant touches the underlying
// player list.
func (g *Game) leaderboardLocked(blind bool) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(g.players))
	for _, p := range g.players {
		entries = append(entries, domain.LeaderboardEntry{
			Name:      p.Name,
			Score:     domain.FormatScore(p.Score),
			AvatarURL: domain.AvatarURL(p.AvatarSeed),
		})
	}

	if blind {
		for i := range entries {
			entries[i].Score = domain.MaskedScore
		}
		rand.Shuffle(len(entries), func(i, j int) {
			entries[i], entries[j] = entries[j], entries[i]
		})
		return entries
	}

	scores := make(map[string]int, len(g.players))
	for _, p := range g.players {
		scores[p.Name] = p.Score
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return scores[entries[i].Name] > scores[entries[j].Name]
	})
	return entries
}

func (g *Game) snapshotLocked() domain.GameState {
	blind := g.blindLocked()

	state := domain.GameState{
		Status:           g.status,
		CurrentRound:     g.currentRound,
		TotalRounds:      g.roundsResolved,
		Leaderboard:      g.leaderboardLocked(blind),
		BlindPhase:       blind,
		TimeLimitSeconds: g.opts.TimeLimitSeconds,
		AutoAdvance:      g.opts.AutoAdvance,
		PlayerCount:      len(g.players),
	}

	if (g.status == domain.StatusPlaying || g.status == domain.StatusFeedback) && g.currentIdx < len(g.players) {
		state.CurrentPlayer = g.players[g.currentIdx].Name
	}
	if g.currentQuestion != nil {
		view := g.currentQuestion.View()
		state.Question = &view
	}
	if g.lastResult != nil {
		result := *g.lastResult
		state.LastResult = &result
	}
	return state
}

func (g *Game) broadcastLocked() {
	if len(g.watchers) == 0 {
		return
	}
	state := g.snapshotLocked()
	for ch := range g.watchers {
		select {
		case ch <- state:
		default:
			// Drop the oldest snapshot so slow watchers never block the game.
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

func newAvatarSeed(name string) string {
	return fmt.Sprintf("%s_%d", name, rand.Intn(1000001))
}
