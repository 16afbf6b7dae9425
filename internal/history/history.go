// Package history keeps the bounded, persistent log of completed games and
// derives the aggregate statistics shown in the stats view.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fxplay/currencyquiz/internal/quiz"
	"github.com/fxplay/currencyquiz/internal/storage"
)

// Capacity is the maximum number of games retained. Appends beyond it evict
// the oldest record first.
const Capacity = 50

const storageKey = "gameHistory"

// Store persists GameRecords as one JSON blob under the gameHistory key.
// Single writer per append; cross-process concurrent writers are
// last-writer-wins, same as the browser-storage original.
type Store struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewStore(s storage.Storage, logger *slog.Logger) *Store {
	return &Store{storage: s, logger: logger}
}

// load reads the current log. A missing key or a corrupt blob both come back
// as an empty history — corruption is logged, never fatal.
func (s *Store) load(ctx context.Context) []quiz.GameRecord {
	data, err := s.storage.Load(ctx, storageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("loading game history", "error", err)
		}
		return nil
	}

	var records []quiz.GameRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Error("game history blob is corrupt, starting fresh", "error", err)
		return nil
	}
	return records
}

// Append adds a completed game to the end of the log, evicting from the
// front once the log exceeds Capacity.
func (s *Store) Append(ctx context.Context, rec quiz.GameRecord) error {
	records := append(s.load(ctx), rec)
	if len(records) > Capacity {
		records = records[len(records)-Capacity:]
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding game history: %w", err)
	}
	if err := s.storage.Save(ctx, storageKey, data); err != nil {
		return fmt.Errorf("saving game history: %w", err)
	}
	return nil
}

// All returns every stored game, oldest first.
func (s *Store) All(ctx context.Context) ([]quiz.GameRecord, error) {
	return s.load(ctx), nil
}

// Clear drops the whole log.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Remove(ctx, storageKey); err != nil {
		return fmt.Errorf("clearing game history: %w", err)
	}
	return nil
}

// Stats are computed on read, never stored.
type Stats struct {
	TotalGames     int              `json:"totalGames"`
	AvgAccuracy    float64          `json:"avgAccuracy"`
	TotalQuestions int              `json:"totalQuestions"`
	BestGame       *quiz.GameRecord `json:"bestGame,omitempty"`
}

// Stats aggregates the stored games. Best-game ties keep the earliest game.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	records := s.load(ctx)
	if len(records) == 0 {
		return Stats{}, nil
	}

	stats := Stats{TotalGames: len(records)}
	best := 0
	var accuracySum float64
	for i, rec := range records {
		accuracySum += rec.Accuracy
		stats.TotalQuestions += rec.QuestionsAnswered
		if rec.Accuracy > records[best].Accuracy {
			best = i
		}
	}
	stats.AvgAccuracy = accuracySum / float64(len(records))
	stats.BestGame = &records[best]
	return stats, nil
}
