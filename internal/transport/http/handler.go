package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/skip2/go-qrcode"

	"trivia-party-service/internal/domain"
	"trivia-party-service/internal/game"
)

// Handler exposes the session and game use cases over REST. Host-only
// operations (configure, start, stop, reset, delete) are gated by a shared
// admin password sent in the X-Admin-Password header; an empty configured
// password disables the gate.
type Handler struct {
	manager       *game.Manager
	adminPassword string
	publicBaseURL string
}

func NewHandler(manager *game.Manager, adminPassword, publicBaseURL string) *Handler {
	return &Handler{
		manager:       manager,
		adminPassword: adminPassword,
		publicBaseURL: publicBaseURL,
	}
}

// Register mounts all routes on the mux.
func (h *Handler) Register(mux *http.ServeMux, ws *WSHandler) {
	mux.HandleFunc("POST /sessions", h.createSession)
	mux.HandleFunc("GET /sessions/{id}/state", h.state)
	mux.HandleFunc("GET /sessions/{id}/qr", h.joinQR)
	mux.HandleFunc("POST /sessions/{id}/join", h.join)
	mux.HandleFunc("POST /sessions/{id}/answer", h.answer)
	mux.HandleFunc("POST /sessions/{id}/continue", h.advance)
	mux.HandleFunc("POST /sessions/{id}/players/{name}/avatar", h.rerollAvatar)
	mux.HandleFunc("GET /sessions/{id}/players/{name}", h.player)

	mux.HandleFunc("POST /sessions/{id}/configure", h.admin(h.configure))
	mux.HandleFunc("POST /sessions/{id}/start", h.admin(h.start))
	mux.HandleFunc("POST /sessions/{id}/stop", h.admin(h.stop))
	mux.HandleFunc("POST /sessions/{id}/reset", h.admin(h.reset))
	mux.HandleFunc("DELETE /sessions/{id}", h.admin(h.deleteSession))

	if ws != nil {
		mux.HandleFunc("GET /sessions/{id}/ws", ws.ServeWS)
	}
}

func (h *Handler) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.adminPassword != "" {
			given := r.Header.Get("X-Admin-Password")
			if subtle.ConstantTimeCompare([]byte(given), []byte(h.adminPassword)) != 1 {
				writeError(w, http.StatusUnauthorized, "admin password required")
				return
			}
		}
		next(w, r)
	}
}

type createSessionRequest struct {
	Players []string `json:"players"`
}

type sessionResponse struct {
	ID      string `json:"id"`
	JoinURL string `json:"joinUrl,omitempty"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	session := h.manager.Create(req.Players)
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:      session.ID,
		JoinURL: h.joinURL(session.ID),
	})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	session, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, domain.ErrSessionNotFound.Error())
		return nil, false
	}
	return session, true
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Game.State())
}

// joinQR renders the join URL as a PNG for the host screen.
func (h *Handler) joinQR(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	png, err := qrcode.Encode(h.joinURL(session.ID), qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "qr generation failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

type joinRequest struct {
	Name string `json:"name"`
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	player, err := session.Game.AddPlayer(req.Name)
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrGameFull):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, playerResponse(player))
}

func (h *Handler) player(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	player, found := session.Game.Player(r.PathValue("name"))
	if !found {
		writeError(w, http.StatusNotFound, domain.ErrPlayerNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, playerResponse(player))
}

func (h *Handler) rerollAvatar(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	if !session.Game.RerollAvatar(name) {
		writeError(w, http.StatusNotFound, domain.ErrPlayerNotFound.Error())
		return
	}
	player, _ := session.Game.Player(name)
	writeJSON(w, http.StatusOK, playerResponse(player))
}

func (h *Handler) configure(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var opts domain.GameOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	session.Game.Configure(opts)
	writeJSON(w, http.StatusOK, session.Game.Options())
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if !session.Game.Start(r.Context()) {
		writeError(w, http.StatusConflict, "game cannot start")
		return
	}
	writeJSON(w, http.StatusOK, session.Game.State())
}

type answerRequest struct {
	Name   string `json:"name"`
	Answer string `json:"answer"`
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := session.Game.SubmitAnswer(req.Name, req.Answer)
	if !result.Valid {
		writeError(w, http.StatusConflict, "answer not accepted")
		return
	}
	writeJSON(w, http.StatusOK, result.AnswerResult)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if !session.Game.Continue(r.Context()) {
		writeError(w, http.StatusConflict, "nothing to continue")
		return
	}
	writeJSON(w, http.StatusOK, session.Game.State())
}

func (h *Handler) stop(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.Game.Stop()
	writeJSON(w, http.StatusOK, session.Game.State())
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.Game.Reset()
	writeJSON(w, http.StatusOK, session.Game.State())
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Delete(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, domain.ErrSessionNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) joinURL(sessionID string) string {
	if h.publicBaseURL == "" {
		return ""
	}
	return h.publicBaseURL + "/sessions/" + sessionID + "/join"
}

type playerView struct {
	Name         string `json:"name"`
	Score        int    `json:"score"`
	SessionToken string `json:"sessionToken"`
	AvatarURL    string `json:"avatarUrl"`
}

func playerResponse(p domain.Player) playerView {
	return playerView{
		Name:         p.Name,
		Score:        p.Score,
		SessionToken: p.SessionToken,
		AvatarURL:    domain.AvatarURL(p.AvatarSeed),
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
