package hubspot

import (
	"errors"
	"fmt"
)

// One sentinel per validation gate so handlers can report a distinct reason
// for each rejection.
var (
	// ErrCodeMissing indicates the callback carried no authorization code.
	ErrCodeMissing = errors.New("hubspot: authorization code missing")
	// ErrStateMissing indicates the callback carried no state parameter.
	ErrStateMissing = errors.New("hubspot: state parameter missing")
	// ErrInvalidState indicates the state parameter could not be decoded.
	ErrInvalidState = errors.New("hubspot: invalid state parameter")
	// ErrStateNotFound indicates no stored state matched the caller identity.
	ErrStateNotFound = errors.New("hubspot: state expired or not found")
	// ErrStateMismatch indicates the decoded nonce differs from the stored one.
	ErrStateMismatch = errors.New("hubspot: state validation failed")
	// ErrCredentialsNotFound indicates the token record is absent or expired.
	ErrCredentialsNotFound = errors.New("hubspot: credentials not found or expired")
	// ErrInvalidCredentials indicates a credential blob without an access token.
	ErrInvalidCredentials = errors.New("hubspot: invalid credentials")
)

// ProviderError reports an error HubSpot returned on the callback redirect
// (the error / error_description query parameters).
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return "hubspot: provider rejected authorization: " + e.Description
	}
	return "hubspot: provider rejected authorization: " + e.Code
}

// UpstreamError reports a non-success response from a HubSpot endpoint.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("hubspot: upstream returned %d: %s", e.Status, e.Body)
}
