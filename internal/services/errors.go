package services

import "errors"

// CSV service errors
var (
	ErrCSVNotFound      = errors.New("csv file not found")
	ErrNotValidated     = errors.New("table has not been validated")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrInvalidAxisType  = errors.New("invalid axis type")
	ErrUnsupportedFile  = errors.New("unsupported file")
	ErrFileTooLarge     = errors.New("file too large")
	ErrUnreadableTable  = errors.New("table cannot be read")
	ErrInvalidMethod    = errors.New("invalid processing method")
	ErrInvalidArgument  = errors.New("invalid processing argument")
	ErrProcessingFailed = errors.New("processing failed")
)

// General errors
var (
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
