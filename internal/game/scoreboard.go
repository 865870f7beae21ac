package game

import (
	"sort"
	"sync"
)

// Scoreboard tallies round wins per nickname across rounds. It keeps its
// own lock because HTTP handlers read it outside the engine mutex.
type Scoreboard struct {
	mu     sync.RWMutex
	wins   map[string]int
	rounds int
	draws  int
}

// ScoreEntry is one row of the win tally.
type ScoreEntry struct {
	Nickname string `json:"nickname"`
	Wins     int    `json:"wins"`
}

// NewScoreboard creates an empty tally.
func NewScoreboard() *Scoreboard {
	return &Scoreboard{wins: make(map[string]int)}
}

// RecordWin credits a finished round to the surviving nickname.
func (s *Scoreboard) RecordWin(nickname string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds++
	s.wins[nickname]++
}

// RecordDraw counts a round that ended with no survivor.
func (s *Scoreboard) RecordDraw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds++
	s.draws++
}

// Top returns up to n entries sorted by wins descending, nickname ascending
// for a stable order.
func (s *Scoreboard) Top(n int) []ScoreEntry {
	s.mu.RLock()
	entries := make([]ScoreEntry, 0, len(s.wins))
	for nick, w := range s.wins {
		entries = append(entries, ScoreEntry{Nickname: nick, Wins: w})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].Nickname < entries[j].Nickname
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Rounds returns the number of completed rounds.
func (s *Scoreboard) Rounds() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rounds
}

// Draws returns the number of rounds that ended without a survivor.
func (s *Scoreboard) Draws() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draws
}
