package audit

import "errors"

// ErrDuplicate reports an append whose EventID was already recorded. It is
// not a failure; the recorder commits the message and moves on.
var ErrDuplicate = errors.New("event already recorded")
