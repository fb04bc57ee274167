package service

import "errors"

// Server-side errors.
var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrTokenIsExpired          = errors.New("token is expired")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")

	ErrUnauthorizedAccessToDifferentUserData = errors.New("unauthorized access to different user data")
)

// Client-side errors. Only local-apply failures and explicit sync calls
// return them; remote failures of mutations are absorbed by the queue.
var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrRecordNotFound    = errors.New("record not found")
	ErrRecordExists      = errors.New("record with this id already exists")
	ErrEmptyRecordID     = errors.New("empty record id")

	ErrNotStarted     = errors.New("sync service is not started")
	ErrAlreadyStarted = errors.New("sync service is already started")

	// ErrSyncInProgress is returned by an explicit sync call coalesced with a
	// pull or drain that is already running.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrSyncUnavailable is returned when identity, connectivity or the
	// sync-enabled preference do not allow remote calls.
	ErrSyncUnavailable = errors.New("sync unavailable")

	ErrRegisterOnServer = errors.New("error registering on server")
	ErrLoginOnServer    = errors.New("error logging in on server")
	ErrNotSignedIn      = errors.New("not signed in")
)
