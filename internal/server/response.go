package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"user-identity-service/pkg/autherr"
)

type errorBody struct {
	Code    autherr.Kind `json:"code"`
	Message string       `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("server: encode response: %v", err)
		}
	}
}

// writeError maps an error's kind to an HTTP status and writes the coded
// body. Internal causes are logged server-side and never leak to callers.
func writeError(w http.ResponseWriter, err error) {
	kind := autherr.KindOf(err)
	status := statusFor(kind)
	message := "internal error"
	var e *autherr.Error
	if errors.As(err, &e) && kind != autherr.KindInternal && kind != autherr.KindUnknown {
		message = e.Message
	}
	if status == http.StatusInternalServerError {
		log.Printf("server: internal error: %v", err)
		kind = autherr.KindInternal
	}
	writeJSON(w, status, errorBody{Code: kind, Message: message})
}

func statusFor(kind autherr.Kind) int {
	switch kind {
	case autherr.KindNoAccessToken,
		autherr.KindTokenExpiredNoRefresh,
		autherr.KindRefreshTokenInvalid,
		autherr.KindSessionInvalid,
		autherr.KindLoginFailed,
		autherr.KindAnswerMismatch,
		autherr.KindSignatureMismatch:
		return http.StatusUnauthorized
	case autherr.KindAccessTokenInvalid,
		autherr.KindAdminRequired,
		autherr.KindInsufficientPermissions:
		return http.StatusForbidden
	case autherr.KindUserNotFound,
		autherr.KindKeysNotFound:
		return http.StatusNotFound
	case autherr.KindInvalidQuestionID,
		autherr.KindInvalidArgument,
		autherr.KindInvalidDurationFormat:
		return http.StatusBadRequest
	case autherr.KindEmailRegistered,
		autherr.KindAlreadyEnrolled:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
