package rcl2

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is a transport-level failure: the backend answered with a
// non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// AppError is an application-level failure reported inside a 2xx response,
// either as success:false or status:"error".
type AppError struct {
	Path    string
	Message string
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: request failed", e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

type envelope struct {
	Success *bool           `json:"success"`
	Status  json.RawMessage `json:"status"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Detail  json.RawMessage `json:"detail"`
	Errors  json.RawMessage `json:"errors"`
	Result  json.RawMessage `json:"result"`
}

func (e envelope) message() string {
	if e.Error != "" {
		return e.Error
	}
	if e.Message != "" {
		return e.Message
	}
	if detail := detailText(e.Detail); detail != "" {
		return detail
	}
	if errs := stringList(e.Errors); len(errs) > 0 {
		return strings.Join(errs, "; ")
	}
	var result struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(e.Result, &result); err == nil {
		return strings.Join(stringList(result.Errors), "; ")
	}
	return ""
}

func stringList(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

func checkEnvelope(path string, payload []byte) error {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		// non-object bodies carry no envelope
		return nil
	}
	if env.Success != nil && !*env.Success {
		return &AppError{Path: path, Message: env.message()}
	}
	var status string
	if err := json.Unmarshal(env.Status, &status); err == nil && strings.EqualFold(status, "error") {
		return &AppError{Path: path, Message: env.message()}
	}
	return nil
}

func errorMessage(payload []byte) string {
	var env envelope
	if err := json.Unmarshal(payload, &env); err == nil {
		if msg := env.message(); msg != "" {
			return msg
		}
	}

	text := strings.TrimSpace(string(payload))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}

// detailText flattens FastAPI-style detail, which is either a string or a
// list of validation objects carrying msg.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
