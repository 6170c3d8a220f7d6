package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bargen/bargen-backend/pkg/types"
)

// Message is immutable once written. The thread key is product plus the
// lexically ordered participant pair.
type Message struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index:messages_thread_idx,priority:1"`
	ParticipantLow  types.Principal `gorm:"column:participant_low;type:text;not null;index:messages_thread_idx,priority:2"`
	ParticipantHigh types.Principal `gorm:"column:participant_high;type:text;not null;index:messages_thread_idx,priority:3"`
	Sender          types.Principal `gorm:"column:sender;type:text;not null"`
	Recipient       types.Principal `gorm:"column:recipient;type:text;not null"`
	Content         string          `gorm:"column:content;type:text;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime;index:messages_thread_idx,priority:4"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	m.ParticipantLow, m.ParticipantHigh = types.OrderedPair(m.Sender, m.Recipient)
	return nil
}
