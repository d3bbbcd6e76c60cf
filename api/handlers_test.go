package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crapstable/models"
	"crapstable/service"
)

func newTestServer(t *testing.T) (*httptest.Server, *service.MockPlayerRepository) {
	t.Helper()

	players := new(service.MockPlayerRepository)
	history := new(service.MockBalanceHistoryRepository)
	audits := new(service.MockRollAuditRepository)

	history.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()
	audits.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()

	uow := new(service.MockUnitOfWork)
	uow.SetRepositories(players, history, audits)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit").Return(nil).Maybe()
	uow.On("Rollback").Return(nil).Maybe()

	factory := new(service.MockUnitOfWorkFactory)
	factory.On("Create").Return(uow)

	tables := service.NewTableService(factory, service.NewSessionManager(service.NewFairDiceFactory()))
	playerSvc := service.NewPlayerService(factory, 100000)

	handler := NewHandler(HandlerDeps{Tables: tables, Players: playerSvc})
	srv := httptest.NewServer(NewRouter(handler))
	t.Cleanup(srv.Close)

	return srv, players
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAPI_PlaceBet(t *testing.T) {
	srv, players := newTestServer(t)

	players.On("GetByDiscordID", mock.Anything, int64(42)).
		Return(&models.Player{DiscordID: 42, Username: "shooter", Balance: 100000}, nil)
	players.On("DeductBalance", mock.Anything, int64(42), int64(1000)).Return(nil)

	resp := postJSON(t, srv.URL+"/table/bets", BetRequest{
		DiscordID: 42,
		Area:      "passLine",
		Amount:    1000,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.PlacementResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Accepted)
	assert.Equal(t, int64(99000), result.Balance)
	require.Len(t, result.Bets, 1)
	assert.Equal(t, models.BetPassLine, result.Bets[0].Area.Kind)
}

func TestAPI_PlaceBet_UnknownArea(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/table/bets", BetRequest{
		DiscordID: 42,
		Area:      "bigRed",
		Amount:    1000,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_PlaceBet_Rejection(t *testing.T) {
	srv, players := newTestServer(t)

	players.On("GetByDiscordID", mock.Anything, int64(42)).
		Return(&models.Player{DiscordID: 42, Username: "shooter", Balance: 100}, nil)

	resp := postJSON(t, srv.URL+"/table/bets", BetRequest{
		DiscordID: 42,
		Area:      "passLine",
		Amount:    1000,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.PlacementResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Accepted)
	assert.Contains(t, result.Reason, "insufficient funds")
}

func TestAPI_TableState_UnknownPlayer(t *testing.T) {
	srv, players := newTestServer(t)

	players.On("GetByDiscordID", mock.Anything, int64(99)).Return(nil, nil)

	resp, err := http.Get(srv.URL + "/table/state/99")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_Replay(t *testing.T) {
	srv, _ := newTestServer(t)

	// 32 zero bytes as hex
	seed := make([]byte, 64)
	for i := range seed {
		seed[i] = '0'
	}

	resp := postJSON(t, srv.URL+"/fairness/replay", ReplayRequest{
		Seed:       string(seed),
		ClientSeed: "42",
		Nonce:      1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var replay ReplayResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&replay))
	assert.GreaterOrEqual(t, replay.Die1, 1)
	assert.LessOrEqual(t, replay.Die1, 6)
	assert.GreaterOrEqual(t, replay.Die2, 1)
	assert.LessOrEqual(t, replay.Die2, 6)
	assert.Equal(t, replay.Die1+replay.Die2, replay.Total)

	// Same seed and nonce always give the same roll
	again := postJSON(t, srv.URL+"/fairness/replay", ReplayRequest{
		Seed:       string(seed),
		ClientSeed: "42",
		Nonce:      1,
	})
	var replay2 ReplayResponse
	require.NoError(t, json.NewDecoder(again.Body).Decode(&replay2))
	assert.Equal(t, replay, replay2)
}

func TestAPI_Scoreboard(t *testing.T) {
	srv, players := newTestServer(t)

	players.On("GetTopByBalance", mock.Anything, 2).Return([]*models.Player{
		{DiscordID: 1, Username: "high", Balance: 500000},
		{DiscordID: 2, Username: "mid", Balance: 50000},
	}, nil)

	resp, err := http.Get(srv.URL + "/players/scoreboard?limit=2")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var board []PlayerResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&board))
	require.Len(t, board, 2)
	assert.Equal(t, "high", board[0].Username)
}
