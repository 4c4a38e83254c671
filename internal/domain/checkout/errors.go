package checkout

import "errors"

var ErrNotProceedable = errors.New("checkout can only complete from the proceed state")
