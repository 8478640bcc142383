package client

import "errors"

// ErrUnavailable indicates the remote service could not be reached or did
// not answer a ping with OK.
var ErrUnavailable = errors.New("server unavailable")
