package api

import "net/http"

// swagger:model api.ErrorResponse
type ErrorResponse struct {
	Error   string `json:"error" example:"not_found"`
	Message string `json:"message" example:"product not found"`
}

// ErrorCode 回傳 HTTP 狀態碼對應的錯誤代碼
func ErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusTooManyRequests:
		return "too_many_requests"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	if status < 500 {
		return "bad_request"
	}
	return "internal"
}

func NewError(status int, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorCode(status), Message: message}
}

// swagger:model api.MessageResponse
type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

// swagger:model api.CountResponse
type CountResponse struct {
	Count int `json:"count" example:"3"`
}
