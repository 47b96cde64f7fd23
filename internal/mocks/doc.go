// Package mocks provides shared test doubles for the card store and the card
// service.
//
// MockCardStore is a testify mock for asserting exact store interactions.
// MockCardService uses function fields and falls back to default return
// values, which suits handler tests that only care about one method.
//
//	cards := &mocks.MockCardService{
//	    StatsFn: func(ctx context.Context, ownerID int64, now time.Time) (domain.Stats, error) {
//	        return domain.Stats{}, errors.New("boom")
//	    },
//	}
package mocks
