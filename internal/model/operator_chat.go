package model

import "time"

const (
	ChatStatusWaiting = "WAITING"
	ChatStatusActive  = "ACTIVE"
	ChatStatusClosed  = "CLOSED"

	SenderOperator = "operator"
)

// OperatorChat is a support session between a patient and an operator.
// ActiveKey mirrors PatientID while the chat is WAITING/ACTIVE and is
// NULLed on close, so the unique index guarantees at most one open chat
// per patient at the storage layer.
type OperatorChat struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID         uint64    `gorm:"index;not null" json:"patientId"`
	OperatorID        *uint64   `gorm:"index" json:"operatorId"`
	Status            string    `gorm:"type:varchar(10);not null;default:WAITING;index" json:"status"`
	HasUnreadOperator bool      `gorm:"type:tinyint(1);default:0;index" json:"hasUnreadOperator"`
	HasUnreadPatient  bool      `gorm:"type:tinyint(1);default:0" json:"hasUnreadPatient"`
	ActiveKey         *uint64   `gorm:"uniqueIndex:idx_active_patient" json:"-"`
	LastMessageAt     time.Time `gorm:"index" json:"lastMessageAt"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`

	Messages []OperatorChatMessage `gorm:"foreignKey:ChatID;references:ID" json:"messages,omitempty"`
}

func (OperatorChat) TableName() string { return "operator_chats" }

// OperatorChatMessage is a single message inside a chat session.
type OperatorChatMessage struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ChatID     uint64    `gorm:"index:idx_chat_created;not null" json:"chatId"`
	SenderID   uint64    `gorm:"not null" json:"senderId"`
	SenderType string    `gorm:"type:varchar(20);not null" json:"senderType"` // patient | operator
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsRead     bool      `gorm:"type:tinyint(1);default:0" json:"isRead"`
	CreatedAt  time.Time `gorm:"index:idx_chat_created" json:"createdAt"`
}

func (OperatorChatMessage) TableName() string { return "operator_chat_messages" }
