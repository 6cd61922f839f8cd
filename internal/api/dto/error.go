package dto

// Body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
