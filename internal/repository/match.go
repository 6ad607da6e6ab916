package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchRecord - the archived result of one finished match. Live room
// state never touches storage; only completed matches are written.
type MatchRecord struct {
	RoomID     string         `json:"room_id"`
	WinnerID   string         `json:"winner_id"`
	Scores     map[string]int `json:"scores"`
	FinishedAt time.Time      `json:"finished_at"`
}

type MatchRepository interface {
	Save(ctx context.Context, record *MatchRecord) error
	GetByRoomID(ctx context.Context, roomID string) (*MatchRecord, error)
	DeleteByRoomID(ctx context.Context, roomID string) error
}

type dbMatch struct {
	client *redis.Client
}

func NewMatchRepository(client *redis.Client) MatchRepository {
	return &dbMatch{
		client: client,
	}
}

func (that *dbMatch) Save(ctx context.Context, record *MatchRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal match: %w", err)
	}

	matchKey := "match:" + record.RoomID
	if err = that.client.Set(ctx, matchKey, recordJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set match: %w", err)
	}

	return nil
}

func (that *dbMatch) GetByRoomID(ctx context.Context, roomID string) (*MatchRecord, error) {
	matchKey := "match:" + roomID

	response, err := that.client.Get(ctx, matchKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrMatchNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get match by room ID: %w", err)
	}

	var record MatchRecord
	if err = json.Unmarshal([]byte(response), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return &record, nil
}

func (that *dbMatch) DeleteByRoomID(ctx context.Context, roomID string) error {
	matchKey := "match:" + roomID

	if err := that.client.Del(ctx, matchKey).Err(); err != nil {
		return fmt.Errorf("failed to delete match by room ID: %w", err)
	}

	return nil
}
