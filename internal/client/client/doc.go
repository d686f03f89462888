// Package client talks to the TOTPKeeper AccountService over gRPC.
//
// GRPCClient owns the connection, speaks the JSON content-subtype defined in
// the api package and maps gRPC status codes back to sentinel errors that
// callers can match with errors.Is: ErrUnavailable, ErrUnauthorized,
// common.ErrDuplicateAccount and common.ErrInvalidInput.
package client
