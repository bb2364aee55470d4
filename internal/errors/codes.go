// Package errors provides structured error handling for hwsearch.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (catalog, index artifacts)
//   - 3XX: Network errors (fragment fetches)
//   - 4XX: Validation errors (queries, paths)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates catalog and index artifact I/O errors.
	CategoryIO Category = "IO"
	// CategoryNetwork indicates fragment fetch errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeCatalogNotFound  = "ERR_201_CATALOG_NOT_FOUND"
	ErrCodeCatalogCorrupt   = "ERR_202_CATALOG_CORRUPT"
	ErrCodeIndexNotFound    = "ERR_203_INDEX_NOT_FOUND"
	ErrCodeIndexCorrupt     = "ERR_204_INDEX_CORRUPT"
	ErrCodeManifestNotFound = "ERR_205_MANIFEST_NOT_FOUND"
	ErrCodeFragmentNotFound = "ERR_206_FRAGMENT_NOT_FOUND"
	ErrCodeWriteFailed      = "ERR_207_WRITE_FAILED"

	// Network errors (300-399)
	ErrCodeFetchTimeout = "ERR_301_FETCH_TIMEOUT"
	ErrCodeFetchFailed  = "ERR_302_FETCH_FAILED"

	// Validation errors (400-499)
	ErrCodeInvalidInput  = "ERR_401_INVALID_INPUT"
	ErrCodeQueryTooShort = "ERR_402_QUERY_TOO_SHORT"
	ErrCodeInvalidRange  = "ERR_403_INVALID_RANGE"
	ErrCodeInvalidPath   = "ERR_404_INVALID_PATH"

	// Internal errors (500-599)
	ErrCodeInternal       = "ERR_501_INTERNAL"
	ErrCodeBuildFailed    = "ERR_502_BUILD_FAILED"
	ErrCodeOptimizeFailed = "ERR_503_OPTIMIZE_FAILED"
	ErrCodeFragmentFailed = "ERR_504_FRAGMENT_FAILED"
	ErrCodeSearchFailed   = "ERR_505_SEARCH_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeIndexCorrupt, ErrCodeCatalogCorrupt:
		return SeverityFatal
	}

	// Fragment fetches degrade to partial results, so network errors only warn.
	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeFetchTimeout, ErrCodeFetchFailed:
		return true
	default:
		return false
	}
}
