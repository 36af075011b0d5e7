package http

import (
	"errors"
	"net/http"

	apierrors "metabulo/internal/errors"
	"metabulo/internal/services"
	"metabulo/internal/table"
)

// toAPIError maps service errors onto problem responses. Errors it does not
// know are returned unchanged and end up as 500s.
func toAPIError(err error) error {
	var invalid *table.ValidationError
	if errors.As(err, &invalid) {
		return apierrors.ErrTableInvalid.WithExtension("issues", invalid.Issues)
	}

	switch {
	case errors.Is(err, services.ErrCSVNotFound):
		return apierrors.NotFoundError("csv file")
	case errors.Is(err, services.ErrIndexOutOfRange):
		return apierrors.NewWithDetails(http.StatusNotFound, "NOT_FOUND", "Axis index not found", err.Error())
	case errors.Is(err, services.ErrNotValidated):
		return apierrors.ErrNotValidated
	case errors.Is(err, services.ErrInvalidMethod),
		errors.Is(err, services.ErrInvalidArgument),
		errors.Is(err, services.ErrInvalidAxisType):
		return apierrors.InvalidParameterWithError(err)
	case errors.Is(err, services.ErrUnreadableTable):
		return apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_TABLE", apierrors.ErrInvalidTable.Message, err.Error())
	case errors.Is(err, services.ErrFileTooLarge):
		return apierrors.NewWithDetails(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", apierrors.ErrPayloadTooLarge.Message, err.Error())
	case errors.Is(err, services.ErrUnsupportedFile):
		return apierrors.NewWithDetails(http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", apierrors.ErrUnsupportedMediaType.Message, err.Error())
	case errors.Is(err, services.ErrProcessingFailed):
		return apierrors.NewWithDetails(http.StatusUnprocessableEntity, "PROCESSING_FAILED", apierrors.ErrProcessingFailed.Message, err.Error())
	case errors.Is(err, services.ErrServiceUnavailable):
		return apierrors.ErrServiceUnavailable
	}
	return err
}
