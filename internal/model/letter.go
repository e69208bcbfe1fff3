package model

import "time"

const (
	SenderPatient     = "patient"
	SenderChiefDoctor = "chief_doctor"
)

// Letter is a thread opened by a patient towards the chief doctor. The
// first answer lives in Reply; everything after that is a LetterMessage.
type Letter struct {
	ID                   uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID            uint64     `gorm:"index;not null" json:"patientId"`
	Subject              string     `gorm:"type:varchar(255);not null" json:"subject"`
	Content              string     `gorm:"type:text;not null" json:"content"`
	Reply                *string    `gorm:"type:text" json:"reply"`
	RepliedAt            *time.Time `json:"repliedAt"`
	IsRead               bool       `gorm:"type:tinyint(1);default:0;index" json:"isRead"`           // chief-doctor side
	IsReplyRead          bool       `gorm:"type:tinyint(1);default:1" json:"isReplyRead"`            // patient side
	HasNewPatientMessage bool       `gorm:"type:tinyint(1);default:0" json:"hasNewPatientMessage"`   // follow-up after a reply exists
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`

	Messages []LetterMessage `gorm:"foreignKey:LetterID;references:ID" json:"messages,omitempty"`
}

func (Letter) TableName() string { return "letters" }

// LetterMessage is one back-and-forth message after the first reply.
type LetterMessage struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	LetterID   uint64    `gorm:"index:idx_letter_created;not null" json:"letterId"`
	SenderType string    `gorm:"type:varchar(20);not null" json:"senderType"` // patient | chief_doctor
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsRead     bool      `gorm:"type:tinyint(1);default:0" json:"isRead"`
	CreatedAt  time.Time `gorm:"index:idx_letter_created" json:"createdAt"`
}

func (LetterMessage) TableName() string { return "letter_messages" }
