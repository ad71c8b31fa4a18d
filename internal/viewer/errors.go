package viewer

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrNoticeNotFound  = errors.New("notice not found")
	ErrPageOutOfRange  = errors.New("page out of range")
	ErrGuardDetached   = errors.New("input guard detached")
)
