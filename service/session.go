package service

import (
	"fmt"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	"crapstable/engine"
	"crapstable/models"
)

// tableSession is the in-memory state of one player's table: the bets on
// felt, the phase machine, a balance mirror of the player row, and the
// dice stream. All access goes through the session mutex; the rolling
// flag additionally rejects bet changes while a throw is being resolved.
type tableSession struct {
	mu           sync.Mutex
	discordID    int64
	ledger       *engine.Ledger
	machine      *engine.Machine
	balance      *engine.Balance
	dice         *engine.FairSource
	bonusWorking bool
	rolling      bool
}

// DiceFactory builds the dice source for a new session. Injected so tests
// can pin the seed.
type DiceFactory func(discordID int64) (*engine.FairSource, error)

// NewFairDiceFactory returns the production dice factory: a random server
// seed per session, client seed derived from the player identity.
func NewFairDiceFactory() DiceFactory {
	return func(discordID int64) (*engine.FairSource, error) {
		return engine.NewFairSource(strconv.FormatInt(discordID, 10))
	}
}

// SessionManager owns every live table session. It replaces ad-hoc global
// state with an explicit object so tests can construct as many managers
// as they like.
type SessionManager struct {
	mu          sync.Mutex
	sessions    map[int64]*tableSession
	diceFactory DiceFactory
}

// NewSessionManager creates an empty session manager.
func NewSessionManager(diceFactory DiceFactory) *SessionManager {
	return &SessionManager{
		sessions:    make(map[int64]*tableSession),
		diceFactory: diceFactory,
	}
}

// session returns the player's table session, creating it with the given
// starting balance on first use.
func (m *SessionManager) session(discordID int64, balance int64) (*tableSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[discordID]; ok {
		return s, nil
	}

	dice, err := m.diceFactory(discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to create dice source: %w", err)
	}

	s := &tableSession{
		discordID: discordID,
		ledger:    engine.NewLedger(),
		machine:   engine.NewMachine(),
		balance:   engine.NewBalance(balance),
		dice:      dice,
	}
	m.sessions[discordID] = s

	log.WithFields(log.Fields{
		"discordID": discordID,
		"seedHash":  dice.SeedHash(),
	}).Info("Created table session")

	return s, nil
}

// peek returns an existing session without creating one.
func (m *SessionManager) peek(discordID int64) *tableSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[discordID]
}

// swapDice replaces a session's dice source, returning the retired one.
func (s *tableSession) swapDice(next *engine.FairSource) *engine.FairSource {
	old := s.dice
	s.dice = next
	return old
}

// snapshot builds a read-only view of the session. Caller holds s.mu.
func (s *tableSession) snapshot() *models.TableState {
	return &models.TableState{
		Phase:            s.machine.Phase(),
		Point:            s.machine.Point(),
		Bets:             s.ledger.Bets(),
		Balance:          s.balance.Cents(),
		BonusBetsWorking: s.bonusWorking,
		SeedHash:         s.dice.SeedHash(),
		Nonce:            s.dice.Nonce(),
	}
}
