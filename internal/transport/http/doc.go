// Package http implements the HTTP handlers of the metabulo API. Handlers
// are a thin layer over the services package: they decode and validate
// requests, call one service method and render the result.
//
// # Routes
//
//	POST   /api/v1/csv                      upload (multipart field "file")
//	GET    /api/v1/csv                      list uploads (limit, offset, order)
//	GET    /api/v1/csv/{id}                 upload with row and column labels
//	DELETE /api/v1/csv/{id}                 remove an upload
//	PUT    /api/v1/csv/{id}/row/{index}     relabel a row
//	PUT    /api/v1/csv/{id}/column/{index}  relabel a column
//	POST   /api/v1/csv/{id}/validate        validate and snapshot measurements
//	GET    /api/v1/csv/{id}/validate        stored snapshot and methods
//	PUT    /api/v1/csv/{id}/normalization   choose a normalization
//	PUT    /api/v1/csv/{id}/transformation  choose a transformation
//	PUT    /api/v1/csv/{id}/scaling         choose a scaling
//	GET    /api/v1/csv/{id}/download        processed table as text/csv
//
// # Error Handling
//
// Failures are rendered as RFC 7807 problem documents by
// internal/errors.ErrorHandler. Service sentinel errors are mapped to
// status codes in one place, toAPIError:
//
//	{
//	    "type": "/errors/table/not-validated",
//	    "title": "Conflict",
//	    "status": 409,
//	    "detail": "The table must be validated first",
//	    "instance": "/api/v1/csv/5f0c.../scaling",
//	    "error_code": "NOT_VALIDATED",
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// CSVServiceInterface.
package http
