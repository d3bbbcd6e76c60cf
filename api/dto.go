package api

// BetRequest asks to put chips on or take chips off a betting area.
type BetRequest struct {
	DiscordID int64  `json:"discordId"`
	Area      string `json:"area"`
	Amount    int64  `json:"amount"` // cents
}

// RollRequest triggers one dice roll for a player's table.
type RollRequest struct {
	DiscordID int64 `json:"discordId"`
}

// WorkingRequest toggles whether place, buy and hardway bets have action
// on come-out rolls.
type WorkingRequest struct {
	DiscordID int64 `json:"discordId"`
	Working   bool  `json:"working"`
}

// RevealSeedRequest rotates a player's dice seed.
type RevealSeedRequest struct {
	DiscordID int64 `json:"discordId"`
}

// RevealSeedResponse returns the retired seed and its published commitment.
type RevealSeedResponse struct {
	Seed     string `json:"seed"`     // hex
	SeedHash string `json:"seedHash"` // sha256 commitment published before play
}

// ReplayRequest verifies a past roll against a revealed seed.
type ReplayRequest struct {
	Seed       string `json:"seed"` // hex
	ClientSeed string `json:"clientSeed"`
	Nonce      uint64 `json:"nonce"`
}

// ReplayResponse is the roll the seed produces at the given nonce.
type ReplayResponse struct {
	Die1  int `json:"die1"`
	Die2  int `json:"die2"`
	Total int `json:"total"`
}

// PlayerResponse is the public view of a player.
type PlayerResponse struct {
	DiscordID int64  `json:"discordId"`
	Username  string `json:"username"`
	Balance   int64  `json:"balance"` // cents
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}
