// Package api provides the client for code dispatch endpoints.
package api

// PingResponse is returned by GET /ping.
type PingResponse struct {
	Message string `json:"message"`
}

// ExecuteRequest carries the code of one executable block.
type ExecuteRequest struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
	Index    int    `json:"index"`
	Source   string `json:"source,omitempty"` // document the block came from
}

// ExecuteResponse is returned by POST /execute. Endpoints may fill any of
// the fields; an empty response means the code was accepted.
type ExecuteResponse struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
	Output string `json:"output,omitempty"`
	URL    string `json:"url,omitempty"`
}

// ErrorResponse represents an API error. Endpoints report the reason in
// either "message" or "error".
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Err        string `json:"error"`
}

func (e *ErrorResponse) message() string {
	if e.Err != "" {
		return e.Err
	}
	return e.Message
}

func (e *ErrorResponse) Error() string {
	return e.message()
}
