package errors

import "net/http"

var (
	ErrCityNotFound = New(
		"CITY_NOT_FOUND",
		"City not found",
		http.StatusNotFound,
	)

	ErrJobNotFound = New(
		"JOB_NOT_FOUND",
		"Area search job not found",
		http.StatusNotFound,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Radius must be a finite non-negative number of kilometers",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrJobFailed = New(
		"JOB_FAILED",
		"Area search job failed",
		http.StatusInternalServerError,
	)

	ErrTooManyJobs = New(
		"TOO_MANY_JOBS",
		"Too many area search jobs in progress, retry later",
		http.StatusServiceUnavailable,
	)

	ErrShuttingDown = New(
		"SHUTTING_DOWN",
		"Service is shutting down",
		http.StatusServiceUnavailable,
	)

	ErrJobStoreError = New(
		"JOB_STORE_ERROR",
		"Job store operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
