package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal      ErrorCode = "COMMON_001"
	ErrCodeBadRequest    ErrorCode = "COMMON_002"
	ErrCodeNotFound      ErrorCode = "COMMON_005"
	ErrCodeConflict      ErrorCode = "COMMON_006"
	ErrCodeTimeout       ErrorCode = "COMMON_009"
	ErrCodeValidation    ErrorCode = "COMMON_010"
	ErrCodeSerialization ErrorCode = "COMMON_011"
	ErrCodeDatabaseError ErrorCode = "COMMON_012"
	ErrCodeCancelled     ErrorCode = "COMMON_017"
)

// Ingestion Error Codes
const (
	// ErrCodeArchiveCorrupt marks a container that cannot be opened as a zip.
	ErrCodeArchiveCorrupt ErrorCode = "ING_001"
	// ErrCodeEntryUnreadable marks an entry whose compressed stream fails to inflate.
	ErrCodeEntryUnreadable ErrorCode = "ING_002"
	// ErrCodeDocumentMalformed marks a markup document that does not parse.
	ErrCodeDocumentMalformed ErrorCode = "ING_003"
	// ErrCodeNestingTooDeep marks a nested container beyond the recursion ceiling.
	ErrCodeNestingTooDeep ErrorCode = "ING_004"
	// ErrCodeStorageUnreachable marks a failed list, stat or read against a store.
	ErrCodeStorageUnreachable ErrorCode = "ING_005"
	// ErrCodeEntryTooLarge marks an entry larger than the configured limit.
	ErrCodeEntryTooLarge ErrorCode = "ING_006"
	ErrCodeSinkFailed    ErrorCode = "ING_007"
	ErrCodeDatasetCodec  ErrorCode = "ING_008"
)

// Short aliases used by the factories
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// skipCodes are the codes that describe a single entry or archive being
// dropped from a run. They never fail the run as a whole.
var skipCodes = map[ErrorCode]bool{
	ErrCodeArchiveCorrupt:     true,
	ErrCodeEntryUnreadable:    true,
	ErrCodeDocumentMalformed:  true,
	ErrCodeNestingTooDeep:     true,
	ErrCodeStorageUnreachable: true,
	ErrCodeEntryTooLarge:      true,
}

// IsSkip reports whether code classifies a recoverable per-entry or
// per-archive failure.
func (c ErrorCode) IsSkip() bool {
	return skipCodes[c]
}

//Personal.AI order the ending
