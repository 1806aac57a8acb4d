package types

// Response envelopes for the storefront API. Every handler wraps its
// payload in one of these two shapes so the frontend can branch on a
// single `data`/`error` discriminator.

// SuccessEnvelope wraps any successful payload under `data`.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire form of a coded gateway error. Details carries
// per-field validation messages when the code allows them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under `error`.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
