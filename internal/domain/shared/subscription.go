package shared

// Unsubscribe cancels a live subscription. Calling it more than once is safe.
type Unsubscribe func()
