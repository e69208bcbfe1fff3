package dto

import "time"

// OpenChatReq starts a support session with the first patient message.
type OpenChatReq struct {
	Content string `json:"content" binding:"required"`
}

// ChatMessageReq appends a message to an existing chat.
type ChatMessageReq struct {
	Content string `json:"content" binding:"required"`
}

// ChatActionReq claims or closes a chat ("claim" / "close").
type ChatActionReq struct {
	Action string `json:"action" binding:"required"`
}

// BlockPatientReq suspends or restores a patient's send capability
// ("block" / "unblock"). Blocking cascade-deletes the patient's chats.
type BlockPatientReq struct {
	Action string `json:"action" binding:"required"`
}

type ChatMessageDTO struct {
	ID         uint64    `json:"id"`
	ChatID     uint64    `json:"chat_id"`
	SenderID   uint64    `json:"sender_id"`
	SenderType string    `json:"sender_type"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

type ChatDTO struct {
	ID                uint64           `json:"id"`
	PatientID         uint64           `json:"patient_id"`
	OperatorID        *uint64          `json:"operator_id"`
	Status            string           `json:"status"`
	HasUnreadOperator bool             `json:"has_unread_operator"`
	HasUnreadPatient  bool             `json:"has_unread_patient"`
	LastMessageAt     time.Time        `json:"last_message_at"`
	CreatedAt         time.Time        `json:"created_at"`
	Messages          []ChatMessageDTO `json:"messages,omitempty"`
}

// ExistingChatDTO rides on the 400 returned for a duplicate open-chat
// attempt so the client can reattach instead of retrying.
type ExistingChatDTO struct {
	ExistingChatID uint64 `json:"existing_chat_id"`
}
