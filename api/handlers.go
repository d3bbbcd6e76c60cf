package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"crapstable/engine"
	"crapstable/models"
	"crapstable/service"
)

var errInvalidLimit = errors.New("limit must be between 1 and 100")

// HandlerDeps bundles the services the HTTP handlers depend on.
type HandlerDeps struct {
	Tables  service.TableService
	Players service.PlayerService
}

// Handler serves the JSON table API.
type Handler struct {
	tables  service.TableService
	players service.PlayerService
}

// NewHandler creates a new API handler
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{tables: deps.Tables, players: deps.Players}
}

func (h *Handler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	payload, err := decode[BetRequest](r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	area, err := models.ParseArea(payload.Area)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.tables.PlaceBet(r.Context(), payload.DiscordID, area, payload.Amount)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) RemoveBet(w http.ResponseWriter, r *http.Request) {
	payload, err := decode[BetRequest](r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	area, err := models.ParseArea(payload.Area)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.tables.RemoveBet(r.Context(), payload.DiscordID, area, payload.Amount)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Roll(w http.ResponseWriter, r *http.Request) {
	payload, err := decode[RollRequest](r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	outcome, err := h.tables.Roll(r.Context(), payload.DiscordID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) TableState(w http.ResponseWriter, r *http.Request) {
	discordID, err := strconv.ParseInt(chi.URLParam(r, "discordID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	state, err := h.tables.TableState(r.Context(), discordID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) SetWorking(w http.ResponseWriter, r *http.Request) {
	payload, err := decode[WorkingRequest](r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.tables.SetBonusBetsWorking(r.Context(), payload.DiscordID, payload.Working); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	state, err := h.tables.TableState(r.Context(), payload.DiscordID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) RevealSeed(w http.ResponseWriter, r *http.Request) {
	payload, err := decode[RevealSeedRequest](r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	seed, seedHash, err := h.tables.RevealSeed(r.Context(), payload.DiscordID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, RevealSeedResponse{Seed: seed, SeedHash: seedHash})
}

func (h *Handler) Replay(w http.ResponseWriter, r *http.Request) {
	payload, err := decode[ReplayRequest](r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	seed, err := hex.DecodeString(payload.Seed)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	roll, err := engine.ReplayRoll(seed, payload.ClientSeed, payload.Nonce)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, ReplayResponse{
		Die1:  roll.Die1,
		Die2:  roll.Die2,
		Total: roll.Total(),
	})
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	discordID, err := strconv.ParseInt(chi.URLParam(r, "discordID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	player, err := h.players.GetPlayer(r.Context(), discordID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, toPlayerResponse(player))
}

func (h *Handler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, errInvalidLimit)
			return
		}
		limit = n
	}

	players, err := h.players.GetScoreboard(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]PlayerResponse, 0, len(players))
	for _, p := range players {
		out = append(out, toPlayerResponse(p))
	}

	writeJSON(w, http.StatusOK, out)
}

func toPlayerResponse(p *models.Player) PlayerResponse {
	return PlayerResponse{
		DiscordID: p.DiscordID,
		Username:  p.Username,
		Balance:   p.Balance,
	}
}

// statusFor maps service errors to HTTP status codes. Placement
// rejections never reach here, they come back accepted=false.
func statusFor(err error) int {
	switch {
	case strings.Contains(err.Error(), "not found"):
		return http.StatusNotFound
	case engine.IsRejection(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decode[T any](body io.Reader) (T, error) {
	var payload T
	err := json.NewDecoder(body).Decode(&payload)
	return payload, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
