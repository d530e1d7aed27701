package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NoticeEnvelope wraps a payload together with non-fatal notices, used when a
// cart operation partially succeeds (stock caps, approval requirements).
type NoticeEnvelope struct {
	Data    any   `json:"data"`
	Notices []any `json:"notices,omitempty"`
}
