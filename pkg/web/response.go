// Package web defines common components for a web application.
package web

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	AccessToken           string `json:"access_token,omitempty"`
	AccessTokenExpiresAt  string `json:"access_token_expires_at,omitempty"`
	RefreshToken          string `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt string `json:"refresh_token_expires_at,omitempty"`
	Data                  any    `json:"data,omitempty"`
	Error                 string `json:"error,omitempty"`
}

// Error wraps a given err into json frinedly struct.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// FormatTime renders token expiry times in responses.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// GetErrorMsg renders a human readable message for the first failed field.
func GetErrorMsg(ve validator.ValidationErrors) string {
	if len(ve) == 0 {
		return ""
	}

	fe := ve[0]

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s field is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "amount":
		return fmt.Sprintf("%s must be a non-negative amount with at most 2 decimals", fe.Field())
	}

	return fmt.Sprintf("%s is invalid", fe.Field())
}
