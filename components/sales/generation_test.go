package sales

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingFetcher struct {
	started chan Query
	release chan struct{}
}

func (f *blockingFetcher) Fetch(ctx context.Context, q Query) (Result, error) {
	f.started <- q
	if q.ProductID == "slow" {
		select {
		case <-f.release:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	return Result{Points: []SalesPoint{{ProductID: q.ProductID, Kind: KindHistorical}}}, nil
}

func TestSessionDiscardsSupersededFetch(t *testing.T) {
	fetcher := &blockingFetcher{started: make(chan Query, 2), release: make(chan struct{})}
	session := NewSession(fetcher)

	type outcome struct {
		result Result
		err    error
	}
	first := make(chan outcome, 1)
	go func() {
		r, err := session.Fetch(context.Background(), Query{ProductID: "slow"})
		first <- outcome{r, err}
	}()
	<-fetcher.started

	second, err := session.Fetch(context.Background(), Query{ProductID: "fast"})
	<-fetcher.started
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Generation)

	select {
	case out := <-first:
		assert.ErrorIs(t, out.err, ErrStale)
	case <-time.After(time.Second):
		t.Fatal("superseded fetch was not cancelled")
	}

	latest := session.Latest()
	require.Len(t, latest.Points, 1)
	assert.Equal(t, "fast", latest.Points[0].ProductID)
	assert.Equal(t, uint64(2), session.Generation())
}
