package main

// Exit codes for the httpflow CLI
const (
	// ExitSuccess indicates the request completed
	ExitSuccess = 0

	// ExitRequestError indicates an invalid request or a failed consumer
	ExitRequestError = 1

	// ExitHTTPError indicates a non-2xx final status with --fail
	ExitHTTPError = 22

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection or protocol error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
