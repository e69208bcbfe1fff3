package dto

// Response is the envelope every endpoint answers with.
type Response struct {
	Code    int
	Message string
	Data    interface{}
}
