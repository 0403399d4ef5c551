package notify

import "errors"

var ErrNotFound = errors.New("no such notification")
