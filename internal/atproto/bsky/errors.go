package bsky

import (
	"errors"
	"fmt"

	"github.com/bluesky-social/indigo/xrpc"

	"github.com/snarfed/bluesky-atom/internal/core/feeds"
)

// extractErrorMessage pulls a human-readable message out of an XRPC error
// body: the "message" field, then the "error" field, then the raw error text.
func extractErrorMessage(err error) string {
	var xe *xrpc.XRPCError
	if errors.As(err, &xe) {
		if xe.Message != "" {
			return xe.Message
		}
		if xe.ErrStr != "" {
			return xe.ErrStr
		}
	}
	return err.Error()
}

// wrapAuthError converts a failed authentication call into a typed
// feeds.AuthError carrying the upstream status and message, so handlers can
// surface it as a 502 with errors.As instead of string matching.
func wrapAuthError(err error) error {
	status := 0
	var xerr *xrpc.Error
	if errors.As(err, &xerr) {
		status = xerr.StatusCode
	}
	return &feeds.AuthError{StatusCode: status, Message: extractErrorMessage(err)}
}

// isExpiredToken reports whether an XRPC call failed because the access
// token expired. The server signals this with a 400 and an
// {"error": "ExpiredToken"} body.
func isExpiredToken(err error) bool {
	var xe *xrpc.XRPCError
	return errors.As(err, &xe) && xe.ErrStr == "ExpiredToken"
}

// wrapXRPCError adds operation context to non-auth XRPC failures.
func wrapXRPCError(err error, operation string) error {
	var xerr *xrpc.Error
	if errors.As(err, &xerr) && (xerr.StatusCode == 401 || xerr.StatusCode == 403) {
		return wrapAuthError(err)
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}
