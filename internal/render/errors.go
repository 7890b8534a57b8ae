package render

import "errors"

// Sentinel errors carried in Result.Warning. The document is always produced;
// these only say which fallback was used.
var (
	ErrPageNotFound = errors.New("page not found")
	ErrPageFailed   = errors.New("page module failed")
	ErrPageEmpty    = errors.New("page rendered no content")
)
