package consts

const (
	TokenBlacklistKey = "auth:token:blacklist:"
)

const (
	ChatCreateLock = "lock:chat:create:"
)
