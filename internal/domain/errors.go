package domain

import "errors"

var (
	ErrNoProviderAvailable  = errors.New("no injected wallet provider available")
	ErrSessionError         = errors.New("wallet session error")
	ErrSessionNotFound      = errors.New("remote session not found")
	ErrNoSigner             = errors.New("no connected wallet to sign with")
	ErrChainRead            = errors.New("chain read failed")
	ErrDecode               = errors.New("billboard decode failed")
	ErrTransactionReverted  = errors.New("transaction reverted")
	ErrTransactionDropped   = errors.New("transaction dropped")
	ErrSubmissionInProgress = errors.New("an update is already being submitted")
	ErrValidation           = errors.New("invalid update")
)

// Retriable reports whether a read may be re-invoked after err.
func Retriable(err error) bool {
	return errors.Is(err, ErrChainRead) && !errors.Is(err, ErrDecode)
}
