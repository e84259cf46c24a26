package types

type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorEnvelope carries the public message in Error, or the list of field
// messages when validation fails. Code names the failure class.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   any    `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}
