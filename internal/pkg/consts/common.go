package consts

// Minimum trimmed lengths accepted by the messaging endpoints.
const (
	MinLetterSubjectLen = 3
	MinLetterContentLen = 10
	MinChatOpenLen      = 3
	MinChatReplyLen     = 1
)

// Unread summary item kinds. The composite (kind, id) pair is the dedup
// key used by polling clients.
const (
	UnreadKindLetter  = "letter"
	UnreadKindMessage = "message"
	UnreadKindChat    = "chat"
)

const (
	BlockActionBlock   = "block"
	BlockActionUnblock = "unblock"
)

const (
	ChatActionClaim = "claim"
	ChatActionClose = "close"
)
