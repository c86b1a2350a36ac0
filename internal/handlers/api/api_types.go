package api

import "github.com/exchora/auditchain/internal/audit"

const apiVersion = "1.0"

type APIResponse struct {
	APIVersion string        `json:"apiVersion"`
	Data       any           `json:"data,omitempty"`
	Error      *APIErrorInfo `json:"error,omitempty"`
}

type APIErrorInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewDataResponse(data any) APIResponse {
	return APIResponse{
		APIVersion: apiVersion,
		Data:       data,
	}
}

func NewErrorResponse(code int, message string) APIResponse {
	return APIResponse{
		APIVersion: apiVersion,
		Error: &APIErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

type RecordEntryRequest struct {
	Action   string         `json:"action"`
	Resource audit.Resource `json:"resource"`
	Details  map[string]any `json:"details,omitempty"`
	Outcome  string         `json:"outcome,omitempty"`
	Severity string         `json:"severity,omitempty"`
}

type RecordEntryResponse struct {
	ID string `json:"id"`
}

type SearchResponse struct {
	Entries []*audit.Entry `json:"entries"`
	Offset  int            `json:"offset"`
	Limit   int            `json:"limit"`
}

type ChainVerifyResponse struct {
	IsValid          bool               `json:"isValid"`
	BrokenAt         *int               `json:"brokenAt,omitempty"`
	TotalEntries     int                `json:"totalEntries"`
	ValidatedEntries int                `json:"validatedEntries"`
	Errors           []audit.ChainError `json:"errors,omitempty"`
}
