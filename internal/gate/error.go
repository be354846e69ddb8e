package gate

import "net/http"

type Kind int

const (
	KindInvalidKey Kind = iota + 1
	KindKeyNotActive
	KindUserBlocked
	KindQuotaExceeded
	KindServiceUnavailable
)

// Error is a gate refusal. Each kind maps to exactly one HTTP status at the
// response boundary.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidKey:
		return http.StatusUnauthorized
	case KindKeyNotActive, KindUserBlocked:
		return http.StatusForbidden
	case KindQuotaExceeded:
		return http.StatusTooManyRequests
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
