package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"trivia-party-service/internal/domain"
	"trivia-party-service/internal/game"
	"trivia-party-service/internal/infra/memory"
	"trivia-party-service/internal/quiz"
)

const testAdminPassword = "letmein"

func newTestServer(t *testing.T) (*httptest.Server, *game.Manager) {
	t.Helper()
	records := []domain.RawQuestion{
		{Question: "Pick right", Answer: "right", BadAnswers: []string{"w1", "w2", "w3"}},
	}
	engine := quiz.NewEngine(memory.NewStaticSource(records))
	defaults := domain.GameOptions{
		MinPlayers:       1,
		MaxPlayers:       8,
		MinRounds:        1,
		MaxRounds:        1,
		DifficultyRatios: domain.DifficultyRatios{Easy: 1},
	}
	manager := game.NewManager(memory.NewSessionStore(), engine, defaults)

	handler := NewHandler(manager, testAdminPassword, "http://party.local")
	mux := http.NewServeMux()
	handler.Register(mux, NewWSHandler(manager))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, manager
}

func doJSON(t *testing.T, method, url string, body any, admin bool) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if admin {
		req.Header.Set("X-Admin-Password", testAdminPassword)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createSession(t *testing.T, server *httptest.Server, players []string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, server.URL+"/sessions", createSessionRequest{Players: players}, false)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: status %d", resp.StatusCode)
	}
	var created sessionResponse
	decodeInto(t, resp, &created)
	if created.ID == "" {
		t.Fatalf("expected a session ID")
	}
	return created.ID
}

func TestCreateSessionReturnsJoinURL(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/sessions", nil, false)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var created sessionResponse
	decodeInto(t, resp, &created)
	if created.JoinURL != "http://party.local/sessions/"+created.ID+"/join" {
		t.Fatalf("unexpected join URL %q", created.JoinURL)
	}
}

func TestJoinValidation(t *testing.T) {
	server, _ := newTestServer(t)
	id := createSession(t, server, nil)

	resp := doJSON(t, http.MethodPost, server.URL+"/sessions/"+id+"/join", joinRequest{Name: ""}, false)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty name: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, server.URL+"/sessions/"+id+"/join", joinRequest{Name: "Alice"}, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join: expected 200, got %d", resp.StatusCode)
	}
	var player playerView
	decodeInto(t, resp, &player)
	if player.Name != "Alice" || player.SessionToken == "" || player.AvatarURL == "" {
		t.Fatalf("unexpected player payload: %+v", player)
	}
}

func TestAdminGate(t *testing.T) {
	server, _ := newTestServer(t)
	id := createSession(t, server, []string{"Alice"})

	resp := doJSON(t, http.MethodPost, server.URL+"/sessions/"+id+"/start", nil, false)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("start without password: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, server.URL+"/sessions/"+id+"/start", nil, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start with password: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestFullGameOverREST(t *testing.T) {
	server, _ := newTestServer(t)
	id := createSession(t, server, nil)
	base := server.URL + "/sessions/" + id

	resp := doJSON(t, http.MethodPost, base+"/join", joinRequest{Name: "Alice"}, false)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, base+"/start", nil, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start: status %d", resp.StatusCode)
	}
	var state domain.GameState
	decodeInto(t, resp, &state)
	if state.Status != domain.StatusPlaying || state.Question == nil {
		t.Fatalf("expected a playing state with a question, got %+v", state)
	}

	resp = doJSON(t, http.MethodPost, base+"/answer", answerRequest{Name: "Alice", Answer: "right"}, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("answer: status %d", resp.StatusCode)
	}
	var result domain.AnswerResult
	decodeInto(t, resp, &result)
	if !result.Correct || result.Points != 10 {
		t.Fatalf("expected 10 points for a correct easy answer, got %+v", result)
	}

	// A second submission during feedback must be rejected.
	resp = doJSON(t, http.MethodPost, base+"/answer", answerRequest{Name: "Alice", Answer: "right"}, false)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("answer during feedback: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, base+"/continue", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("continue: status %d", resp.StatusCode)
	}
	decodeInto(t, resp, &state)
	if state.Status != domain.StatusFinished {
		t.Fatalf("single-round game should finish, got %s", state.Status)
	}
	if state.Leaderboard[0].Score != "10" {
		t.Fatalf("expected final score 10, got %s", state.Leaderboard[0].Score)
	}
}

func TestConfigureUpdatesOptions(t *testing.T) {
	server, _ := newTestServer(t)
	id := createSession(t, server, nil)

	opts := domain.GameOptions{MinPlayers: 2, MaxPlayers: 4, MinRounds: 3, MaxRounds: 5}
	resp := doJSON(t, http.MethodPost, server.URL+"/sessions/"+id+"/configure", opts, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("configure: status %d", resp.StatusCode)
	}
	var got domain.GameOptions
	decodeInto(t, resp, &got)
	if got.MinRounds != 3 || got.MaxRounds != 5 || got.MaxPlayers != 4 {
		t.Fatalf("options not applied: %+v", got)
	}
}

func TestRerollAvatarEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	id := createSession(t, server, []string{"Alice"})
	base := server.URL + "/sessions/" + id

	resp := doJSON(t, http.MethodGet, base+"/players/Alice", nil, false)
	var before playerView
	decodeInto(t, resp, &before)

	resp = doJSON(t, http.MethodPost, base+"/players/Alice/avatar", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reroll: status %d", resp.StatusCode)
	}
	var after playerView
	decodeInto(t, resp, &after)
	if after.AvatarURL == before.AvatarURL {
		t.Fatalf("reroll must change the avatar URL")
	}

	resp = doJSON(t, http.MethodPost, base+"/players/Ghost/avatar", nil, false)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown player reroll: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestJoinQRServesPNG(t *testing.T) {
	server, _ := newTestServer(t)
	id := createSession(t, server, nil)

	resp := doJSON(t, http.MethodGet, server.URL+"/sessions/"+id+"/qr", nil, false)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("qr: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
}

func TestDeleteSession(t *testing.T) {
	server, _ := newTestServer(t)
	id := createSession(t, server, nil)

	resp := doJSON(t, http.MethodDelete, server.URL+"/sessions/"+id, nil, true)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, server.URL+"/sessions/"+id+"/state", nil, false)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("state after delete: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnknownSessionIs404(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/sessions/nope/state", nil, false)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
