package utils

import "time"

// Every endpoint answers with the same envelope: a success flag plus either
// the payload or a coded error. Clients branch on the machine-readable code,
// the message is for humans.
type SuccessResponse struct {
	Success     bool      `json:"success"`
	Data        any       `json:"data"`
	GeneratedAt time.Time `json:"generated_at"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func CreateSuccessResponse(data any) SuccessResponse {
	return SuccessResponse{
		Success:     true,
		Data:        data,
		GeneratedAt: time.Now(),
	}
}

func CreateErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: message,
		},
	}
}
