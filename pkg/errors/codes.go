package errors

type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeNotFound         Code = "NOT_FOUND"
	CodeConflict         Code = "CONFLICT"
	CodeForbidden        Code = "FORBIDDEN"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeInvalidReceiver  Code = "INVALID_RECEIVER"
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	CodeInternal         Code = "INTERNAL"
)
