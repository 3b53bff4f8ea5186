package redis

import "github.com/redis/rueidis"

// NewStoreForTest wraps an existing (typically mocked) client.
func NewStoreForTest(client rueidis.Client) *Store {
	return &Store{client: client}
}
