package model

import "time"

// NoticeLevel is the severity of a user-facing notice
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// NoticeCode identifies what a notice is about
type NoticeCode string

const (
	NoticeUnauthenticated  NoticeCode = "unauthenticated"
	NoticeIdentityRejected NoticeCode = "identity_rejected"
	NoticeConnectionLost   NoticeCode = "connection_lost"
	NoticeServerError      NoticeCode = "server_error"
	NoticeIdentified       NoticeCode = "identified"
)

// Notice is a non-blocking message for the user, e.g. a toast
type Notice struct {
	Level   NoticeLevel
	Code    NoticeCode
	Message string
	Time    time.Time
}
