// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Scoring pipeline errors
const (
	ErrCodeCandidateNotFound      ErrorCode = "CANDIDATE_NOT_FOUND"
	ErrCodeJobNotFound            ErrorCode = "JOB_NOT_FOUND"
	ErrCodeInputValidationFailed  ErrorCode = "INPUT_VALIDATION_FAILED"
	ErrCodeConfigNotFound         ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigValidationFailed ErrorCode = "CONFIG_VALIDATION_FAILED"
	ErrCodeConfigIntegrityError   ErrorCode = "CONFIG_INTEGRITY_ERROR"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeScorePersistFailed       ErrorCode = "SCORE_PERSIST_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeScoreIndexFailed              ErrorCode = "SCORE_INDEX_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeRescoreBatchFailed ErrorCode = "RESCORE_BATCH_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewCandidateNotFoundError creates a non-retryable missing-extraction error.
func NewCandidateNotFoundError(candidateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCandidateNotFound,
		Message:   "Candidate extraction not found",
		Details:   fmt.Sprintf("candidateId: %s", candidateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewJobNotFoundError creates a non-retryable missing-job error.
func NewJobNotFoundError(jobID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeJobNotFound,
		Message:   "Job posting not found",
		Details:   fmt.Sprintf("jobId: %s", jobID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputValidationFailedError creates a non-retryable input validation error.
func NewInputValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputValidationFailed,
		Message:   "Job variable validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigNotFoundError creates a non-retryable missing-config error.
func NewConfigNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigNotFound,
		Message:   "Scoring config not found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigValidationFailedError creates a non-retryable config validation error.
func NewConfigValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigValidationFailed,
		Message:   "Scoring config validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigIntegrityError creates a non-retryable corrupt-config error.
func NewConfigIntegrityError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigIntegrityError,
		Message:   "Scoring config is internally inconsistent",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScorePersistFailedError creates a retryable score persistence error.
func NewScorePersistFailedError(candidateID, jobID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScorePersistFailed,
		Message:   "Score persistence failed",
		Details:   fmt.Sprintf("candidateId: %s, jobId: %s, error: %s", candidateID, jobID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoreIndexFailedError creates a retryable score indexing error.
func NewScoreIndexFailedError(candidateID, jobID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoreIndexFailed,
		Message:   "Score document indexing failed",
		Details:   fmt.Sprintf("candidateId: %s, jobId: %s, error: %s", candidateID, jobID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Elasticsearch query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRescoreBatchFailedError creates a retryable batch rescore error.
func NewRescoreBatchFailedError(jobID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRescoreBatchFailed,
		Message:   "Batch rescore failed",
		Details:   fmt.Sprintf("jobId: %s, error: %s", jobID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeCandidateNotFound:             "CANDIDATE_NOT_FOUND",
	ErrCodeJobNotFound:                   "JOB_NOT_FOUND",
	ErrCodeInputValidationFailed:         "INPUT_VALIDATION_FAILED",
	ErrCodeConfigNotFound:                "CONFIG_NOT_FOUND",
	ErrCodeConfigValidationFailed:        "CONFIG_VALIDATION_FAILED",
	ErrCodeConfigIntegrityError:          "CONFIG_INTEGRITY_ERROR",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeScorePersistFailed:            "SCORE_PERSIST_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeScoreIndexFailed:              "SCORE_INDEX_FAILED",
	ErrCodeSearchTimeout:                 "SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
	ErrCodeRescoreBatchFailed:            "RESCORE_BATCH_FAILED",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeScorePersistFailed,
		ErrCodeScoreIndexFailed,
		ErrCodeRescoreBatchFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIG"):
		return "CONFIG"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "SCORE") || strings.Contains(codeStr, "RESCORE"):
		return "SCORING"
	case strings.Contains(codeStr, "NOT_FOUND") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
