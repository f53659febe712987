package usecase

import "time"

// DefaultTransactionTimeout bounds a posting unit. Row locks taken by
// FOR UPDATE are held until commit, so a stuck unit must not block the
// account indefinitely.
const DefaultTransactionTimeout = 10 * time.Second
