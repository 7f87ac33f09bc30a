package utils

import "net/http"

type contextKey string

const UserIDKey = contextKey("userID")
const UserRoleKey = contextKey("userRole")
const UserKey = contextKey("user")
const SessionIDKey = contextKey("sessionID")
const RequestIDKey = contextKey("requestID")

// GetUserID returns the authenticated user id from the request context.
func GetUserID(r *http.Request) (uint, bool) {
	v := r.Context().Value(UserIDKey)
	id, ok := v.(uint)
	return id, ok
}

// GetRequestID returns the request id set by the request id middleware.
func GetRequestID(r *http.Request) string {
	s, _ := r.Context().Value(RequestIDKey).(string)
	return s
}
