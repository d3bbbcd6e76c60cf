package service

import (
	"context"
	"encoding/hex"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crapstable/engine"
	"crapstable/models"
)

// countingSeedFactory pins dice seeds so sessions are reproducible while
// still handing out a fresh seed on every rotation.
func countingSeedFactory() DiceFactory {
	var n byte
	return func(discordID int64) (*engine.FairSource, error) {
		n++
		serverSeed := make([]byte, 32)
		for i := range serverSeed {
			serverSeed[i] = n
		}
		return engine.NewFairSourceFromSeed(serverSeed, strconv.FormatInt(discordID, 10)), nil
	}
}

// tableFixture wires a table service over fully mocked persistence with a
// funded player.
type tableFixture struct {
	svc       TableService
	uow       *MockUnitOfWork
	players   *MockPlayerRepository
	history   *MockBalanceHistoryRepository
	audits    *MockRollAuditRepository
	balance   int64
	discordID int64
}

func newTableFixture(t *testing.T, balance int64) *tableFixture {
	t.Helper()

	f := &tableFixture{
		uow:       new(MockUnitOfWork),
		players:   new(MockPlayerRepository),
		history:   new(MockBalanceHistoryRepository),
		audits:    new(MockRollAuditRepository),
		balance:   balance,
		discordID: 4242,
	}
	f.uow.SetRepositories(f.players, f.history, f.audits)

	factory := new(MockUnitOfWorkFactory)
	factory.On("Create").Return(f.uow)
	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.players.On("GetByDiscordID", mock.Anything, f.discordID).
		Return(&models.Player{DiscordID: f.discordID, Username: "shooter", Balance: balance}, nil)

	f.svc = NewTableService(factory, NewSessionManager(countingSeedFactory()))
	return f
}

func TestTableService_PlaceBet(t *testing.T) {
	ctx := context.Background()
	f := newTableFixture(t, 100000)

	f.players.On("DeductBalance", ctx, f.discordID, int64(1000)).Return(nil)
	f.history.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.ChangeAmount == -1000 && h.TransactionType == models.TransactionTypeBetPlace
	})).Return(nil)

	res, err := f.svc.PlaceBet(ctx, f.discordID, models.Area{Kind: models.BetPassLine}, 1000)

	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, int64(99000), res.Balance)
	require.Len(t, res.Bets, 1)
	assert.Equal(t, models.BetPassLine, res.Bets[0].Area.Kind)

	f.players.AssertExpectations(t)
	f.history.AssertExpectations(t)
}

func TestTableService_PlaceBet_BuyIncludesCommission(t *testing.T) {
	ctx := context.Background()
	f := newTableFixture(t, 100000)

	// $20 buy carries a $1 commission.
	f.players.On("DeductBalance", ctx, f.discordID, int64(2100)).Return(nil)
	f.history.On("Record", ctx, mock.Anything).Return(nil)

	res, err := f.svc.PlaceBet(ctx, f.discordID, models.Area{Kind: models.BetBuy, Number: 4}, 2000)

	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, int64(100000-2100), res.Balance)
}

func TestTableService_PlaceBet_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	f := newTableFixture(t, 500)

	res, err := f.svc.PlaceBet(ctx, f.discordID, models.Area{Kind: models.BetPassLine}, 1000)

	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Contains(t, res.Reason, "insufficient funds")
	assert.Equal(t, int64(500), res.Balance)
	assert.Empty(t, res.Bets)

	f.players.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	f.history.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestTableService_PlaceBet_WrongPhase(t *testing.T) {
	ctx := context.Background()
	f := newTableFixture(t, 100000)

	// Odds with no point established is a rejection, not an error.
	res, err := f.svc.PlaceBet(ctx, f.discordID, models.Area{Kind: models.BetPassLineOdds}, 1000)

	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.NotEmpty(t, res.Reason)
}

func TestTableService_PlaceBet_PersistFailureLeavesTableUntouched(t *testing.T) {
	ctx := context.Background()
	f := newTableFixture(t, 100000)

	f.players.On("DeductBalance", ctx, f.discordID, int64(1000)).
		Return(assert.AnError)

	_, err := f.svc.PlaceBet(ctx, f.discordID, models.Area{Kind: models.BetPassLine}, 1000)
	require.Error(t, err)

	state, err := f.svc.TableState(ctx, f.discordID)
	require.NoError(t, err)
	assert.Empty(t, state.Bets)
	assert.Equal(t, int64(100000), state.Balance)
}

func TestTableService_RemoveBet(t *testing.T) {
	ctx := context.Background()
	f := newTableFixture(t, 100000)

	f.players.On("DeductBalance", ctx, f.discordID, int64(500)).Return(nil)
	f.players.On("AddBalance", ctx, f.discordID, int64(500)).Return(nil)
	f.history.On("Record", ctx, mock.Anything).Return(nil)

	_, err := f.svc.PlaceBet(ctx, f.discordID, models.Area{Kind: models.BetField}, 500)
	require.NoError(t, err)

	res, err := f.svc.RemoveBet(ctx, f.discordID, models.Area{Kind: models.BetField}, 500)

	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, int64(100000), res.Balance)
	assert.Empty(t, res.Bets)
}

func TestTableService_RemoveBet_NoSuchBet(t *testing.T) {
	ctx := context.Background()
	f := newTableFixture(t, 100000)

	res, err := f.svc.RemoveBet(ctx, f.discordID, models.Area{Kind: models.BetField}, 500)

	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.NotEmpty(t, res.Reason)
	f.players.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestTableService_Roll(t *testing.T) {
	ctx := context.Background()
	f := newTableFixture(t, 100000)

	f.players.On("DeductBalance", ctx, f.discordID, int64(1000)).Return(nil)
	f.players.On("AddBalance", ctx, f.discordID, mock.Anything).Return(nil).Maybe()
	f.history.On("Record", ctx, mock.Anything).Return(nil)
	f.audits.On("Record", ctx, mock.MatchedBy(func(v *models.RollValidation) bool {
		return v.Legit && v.DiscordID == f.discordID && v.DiceNonce == 1
	})).Return(nil)

	_, err := f.svc.PlaceBet(ctx, f.discordID, models.Area{Kind: models.BetPassLine}, 1000)
	require.NoError(t, err)

	out, err := f.svc.Roll(ctx, f.discordID)
	require.NoError(t, err)

	// The balance mirror follows the outcome exactly.
	state, err := f.svc.TableState(ctx, f.discordID)
	require.NoError(t, err)
	assert.Equal(t, int64(99000)+out.TotalWinnings+out.TotalReturned, state.Balance)
	assert.Equal(t, out.Phase, state.Phase)
	assert.Equal(t, out.Point, state.Point)
	assert.Equal(t, len(out.BetsRetained), len(state.Bets))
	assert.Equal(t, uint64(1), state.Nonce)

	f.audits.AssertExpectations(t)
}

func TestTableService_Roll_EveryRollIsAudited(t *testing.T) {
	ctx := context.Background()
	f := newTableFixture(t, 100000)

	f.players.On("AddBalance", ctx, f.discordID, mock.Anything).Return(nil).Maybe()
	f.history.On("Record", ctx, mock.Anything).Return(nil).Maybe()
	f.audits.On("Record", ctx, mock.Anything).Return(nil)

	// Empty-table rolls still produce an audit record each.
	for i := 0; i < 5; i++ {
		_, err := f.svc.Roll(ctx, f.discordID)
		require.NoError(t, err)
	}

	f.audits.AssertNumberOfCalls(t, "Record", 5)
}

func TestTableService_Roll_UnknownPlayer(t *testing.T) {
	ctx := context.Background()
	f := newTableFixture(t, 100000)

	f.players.On("GetByDiscordID", mock.Anything, int64(777)).Return(nil, nil)

	_, err := f.svc.Roll(ctx, 777)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestTableService_SetBonusBetsWorking(t *testing.T) {
	ctx := context.Background()
	f := newTableFixture(t, 100000)

	state, err := f.svc.TableState(ctx, f.discordID)
	require.NoError(t, err)
	assert.False(t, state.BonusBetsWorking)

	require.NoError(t, f.svc.SetBonusBetsWorking(ctx, f.discordID, true))

	state, err = f.svc.TableState(ctx, f.discordID)
	require.NoError(t, err)
	assert.True(t, state.BonusBetsWorking)
}

func TestTableService_RevealSeed(t *testing.T) {
	ctx := context.Background()
	f := newTableFixture(t, 100000)

	f.players.On("AddBalance", ctx, f.discordID, mock.Anything).Return(nil).Maybe()
	f.history.On("Record", ctx, mock.Anything).Return(nil).Maybe()
	f.audits.On("Record", ctx, mock.Anything).Return(nil)

	before, err := f.svc.TableState(ctx, f.discordID)
	require.NoError(t, err)

	out, err := f.svc.Roll(ctx, f.discordID)
	require.NoError(t, err)

	seedHex, seedHash, err := f.svc.RevealSeed(ctx, f.discordID)
	require.NoError(t, err)
	assert.Equal(t, before.SeedHash, seedHash)

	// The revealed seed replays the roll exactly.
	seed, err := hex.DecodeString(seedHex)
	require.NoError(t, err)
	replayed, err := engine.ReplayRoll(seed, strconv.FormatInt(f.discordID, 10), 1)
	require.NoError(t, err)
	assert.Equal(t, out.Roll, replayed)

	// The replacement seed starts a fresh commitment and stream.
	after, err := f.svc.TableState(ctx, f.discordID)
	require.NoError(t, err)
	assert.NotEqual(t, before.SeedHash, after.SeedHash)
	assert.Zero(t, after.Nonce)
}
