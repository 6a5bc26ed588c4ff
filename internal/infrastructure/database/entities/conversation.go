package entities

import "time"

// Conversation is the persisted conversation row.
type Conversation struct {
	ID           uint      `gorm:"primaryKey"`
	PublicID     string    `gorm:"size:64;uniqueIndex;not null"`
	Title        string    `gorm:"size:512"`
	SystemPrompt string    `gorm:"type:text"`
	Messages     []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Message is one persisted turn. SequenceNumber is the zero-based position
// in the conversation; it is unique per conversation and dense except while
// a replace transaction is in flight.
type Message struct {
	ID             uint                 `gorm:"primaryKey"`
	PublicID       string               `gorm:"size:64;uniqueIndex;not null"`
	ConversationID uint                 `gorm:"index;not null"`
	Role           string               `gorm:"size:16;not null"`
	Content        string               `gorm:"type:text"`
	SequenceNumber int                  `gorm:"index;not null"`
	Metadata       []GenerationMetadata `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
}

// GenerationMetadata is one model's timing and token accounting attached to
// an assistant message.
type GenerationMetadata struct {
	ID                uint   `gorm:"primaryKey"`
	MessageID         uint   `gorm:"index;not null"`
	ModelPublicID     string `gorm:"size:64;not null"`
	TimeToFirstToken  float64
	TokensPerSecond   float64
	OutputTokens      int
	InputTokens       *int
	CachedInputTokens *int
	CreatedAt         time.Time
}
