package dto

import "time"

// CreateLetterReq opens a new letter thread to the chief doctor.
type CreateLetterReq struct {
	Subject string `json:"subject" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// FollowUpReq is a patient message appended after the first reply.
type FollowUpReq struct {
	Content string `json:"content" binding:"required"`
}

// ReplyReq is a chief-doctor answer: the first call becomes the thread
// reply, later ones become thread messages.
type ReplyReq struct {
	Content string `json:"content" binding:"required"`
}

type LetterMessageDTO struct {
	ID         uint64    `json:"id"`
	SenderType string    `json:"sender_type"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

type LetterDTO struct {
	ID                   uint64             `json:"id"`
	PatientID            uint64             `json:"patient_id"`
	Subject              string             `json:"subject"`
	Content              string             `json:"content"`
	Reply                *string            `json:"reply"`
	RepliedAt            *time.Time         `json:"replied_at"`
	IsRead               bool               `json:"is_read"`
	IsReplyRead          bool               `json:"is_reply_read"`
	HasNewPatientMessage bool               `json:"has_new_patient_message"`
	CreatedAt            time.Time          `json:"created_at"`
	Messages             []LetterMessageDTO `json:"messages,omitempty"`
}

// UnreadItem is one dedupable event: kind plus the entity id. Clients
// key their notified-set on the pair, never on the bare id.
type UnreadItem struct {
	Kind string `json:"kind"`
	ID   uint64 `json:"id"`
}

// UnreadSummaryDTO is the polling payload.
type UnreadSummaryDTO struct {
	Items []UnreadItem `json:"items"`
	Count int          `json:"count"`
}
