package engine

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"crapstable/models"
)

// Source produces one fair two-die roll per request.
type Source interface {
	Roll() (models.Roll, error)
}

// FairSource is a provably fair dice source. Each roll hashes
// HMAC-SHA256(serverSeed, "clientSeed:nonce") and maps digest bytes to die
// faces with rejection sampling, so every face is uniform and the whole
// roll sequence can be replayed from the seeds once the server seed is
// revealed. The SHA-256 of the server seed is published up front as the
// fairness commitment.
type FairSource struct {
	mu         sync.Mutex
	serverSeed []byte
	clientSeed string
	nonce      uint64
}

// NewFairSource creates a source with a random server seed.
func NewFairSource(clientSeed string) (*FairSource, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("failed to generate server seed: %w", err)
	}
	return &FairSource{serverSeed: seed, clientSeed: clientSeed}, nil
}

// NewFairSourceFromSeed creates a source with a fixed server seed, used by
// tests and by fairness replays.
func NewFairSourceFromSeed(serverSeed []byte, clientSeed string) *FairSource {
	return &FairSource{serverSeed: serverSeed, clientSeed: clientSeed}
}

// Roll advances the nonce and produces the next roll in the stream.
func (s *FairSource) Roll() (models.Roll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonce++
	d1, d2, err := diceAt(s.serverSeed, s.clientSeed, s.nonce)
	if err != nil {
		return models.Roll{}, err
	}
	return models.Roll{Die1: d1, Die2: d2}, nil
}

// Nonce returns the number of rolls produced so far.
func (s *FairSource) Nonce() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nonce
}

// SeedHash returns the SHA-256 commitment to the server seed.
func (s *FairSource) SeedHash() string {
	sum := sha256.Sum256(s.serverSeed)
	return hex.EncodeToString(sum[:])
}

// RevealSeed exposes the server seed so finished sessions can be audited.
func (s *FairSource) RevealSeed() string {
	return hex.EncodeToString(s.serverSeed)
}

// ReplayRoll recomputes the roll a FairSource produced at the given nonce.
// A fairness UI calls this with the revealed server seed to verify any
// past roll.
func ReplayRoll(serverSeed []byte, clientSeed string, nonce uint64) (models.Roll, error) {
	d1, d2, err := diceAt(serverSeed, clientSeed, nonce)
	if err != nil {
		return models.Roll{}, err
	}
	return models.Roll{Die1: d1, Die2: d2}, nil
}

// diceAt maps the HMAC digest for one nonce to two die faces. Bytes >= 252
// are skipped so the modulo is unbiased; a single 32-byte digest running
// out of usable bytes is practically impossible, but the stream re-keys
// with a counter suffix just in case.
func diceAt(serverSeed []byte, clientSeed string, nonce uint64) (int, int, error) {
	dice := make([]int, 0, 2)
	for round := 0; len(dice) < 2 && round < 4; round++ {
		mac := hmac.New(sha256.New, serverSeed)
		fmt.Fprintf(mac, "%s:%d:%d", clientSeed, nonce, round)
		for _, b := range mac.Sum(nil) {
			if b >= 252 {
				continue
			}
			dice = append(dice, int(b%6)+1)
			if len(dice) == 2 {
				break
			}
		}
	}
	if len(dice) < 2 {
		return 0, 0, fmt.Errorf("dice stream exhausted at nonce %d", nonce)
	}
	return dice[0], dice[1], nil
}
