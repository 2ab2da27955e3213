package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a failed remote call. Message holds the server-provided text when
// there is one; Err holds the transport error when the call never completed.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	case e.Status != 0:
		return fmt.Sprintf("remote: %d %s", e.Status, http.StatusText(e.Status))
	}
	return "remote: unknown error"
}

func (e *Error) Unwrap() error { return e.Err }

// Message picks the user-visible text for err: the server message first,
// then the transport error's text, then fallback. A bare HTTP status is
// never shown to users.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var re *Error
	if errors.As(err, &re) {
		switch {
		case re.Message != "":
			return re.Message
		case re.Err != nil:
			err = re.Err
		default:
			return fallback
		}
	}
	if s := strings.TrimSpace(err.Error()); s != "" {
		return s
	}
	return fallback
}

// Unavailable reports whether err means the API could not answer: a
// transport failure or a 5xx. Client-side rejections (4xx) are not.
func Unavailable(err error) bool {
	if err == nil {
		return false
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Status == 0 || re.Status >= http.StatusInternalServerError
	}
	return true
}

type messageBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// serverMessage digs the human readable message out of an error body:
// message, then error (string or {message}), then data.message.
func serverMessage(body []byte) string {
	var mb messageBody
	if err := json.Unmarshal(body, &mb); err != nil {
		return ""
	}
	if mb.Message != "" {
		return mb.Message
	}
	if len(mb.Error) > 0 {
		var s string
		if json.Unmarshal(mb.Error, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(mb.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	var data struct {
		Message string `json:"message"`
	}
	if len(mb.Data) > 0 && json.Unmarshal(mb.Data, &data) == nil {
		return data.Message
	}
	return ""
}

// applicationFailure reports 2xx bodies that still say success:false.
func applicationFailure(body []byte) (bool, string) {
	var env struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Success == nil || *env.Success {
		return false, ""
	}
	msg := serverMessage(body)
	if msg == "" {
		msg = "request was rejected by the server"
	}
	return true, msg
}
