package amqp

import (
	"encoding/json"
	"time"
)

// BudgetCheckMessage asks the worker to re-evaluate every budget matching
// (UserID, Category). It carries no amounts: the worker recomputes the
// spend from storage, so a stale or redelivered message is harmless.
type BudgetCheckMessage struct {
	UserID    int64     `json:"user_id"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBudgetCheckMessage(userID int64, category string) *BudgetCheckMessage {
	return &BudgetCheckMessage{
		UserID:    userID,
		Category:  category,
		Timestamp: time.Now(),
	}
}

func (m *BudgetCheckMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetCheckMessageFromJSON(data []byte) (*BudgetCheckMessage, error) {
	var msg BudgetCheckMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
