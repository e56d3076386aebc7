package ports

import "context"

// StoredResponse contains the response data to replay for a reused key.
type StoredResponse struct {
	StatusCode int
	Body       []byte
	OrderID    string
}

// IdempotencyStore lets checkout requests be retried safely: a replayed
// Idempotency-Key returns the stored response instead of creating a second
// order and payment session. Keys are scoped per user so one caller can
// never replay another caller's response.
type IdempotencyStore interface {
	Get(ctx context.Context, userID, key string) (*StoredResponse, error)
	Save(ctx context.Context, userID, key string, response StoredResponse) error
}
