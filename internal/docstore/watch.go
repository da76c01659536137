package docstore

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Subscription is a handle on a live query. Unsubscribe stops delivery;
// it is safe to call more than once.
type Subscription struct {
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// Unsubscribe cancels the live query
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Subscribe starts a live query over a collection, optionally filtered by
// field equality. The callback receives the full matching snapshot
// immediately and again after every server-side change, until the handle
// is unsubscribed. Delivery runs on a background goroutine.
func (c *Client) Subscribe(collection, field, equals string, callback func(Collection)) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)

		// since starts below any real version so the first poll returns
		// the current snapshot without waiting
		since := int64(-1)
		for {
			coll, err := c.changes(ctx, collection, field, equals, since)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(2 * time.Second):
				}
				continue
			}

			if coll.Version > since {
				since = coll.Version
				callback(coll)
			}

			if ctx.Err() != nil {
				return
			}
		}
	}()

	return sub
}

// changes long-polls the server until the collection version passes since
func (c *Client) changes(ctx context.Context, collection, field, equals string, since int64) (Collection, error) {
	if !c.IsLoggedIn() {
		return Collection{}, ErrNotLoggedIn
	}

	path := "/api/v1/collections/" + url.PathEscape(collection) + "/changes?since=" +
		strconv.FormatInt(since, 10)
	if field != "" {
		path += "&field=" + url.QueryEscape(field) + "&equals=" + url.QueryEscape(equals)
	}

	var coll Collection
	err := c.do(ctx, http.MethodGet, path, nil, &coll)
	return coll, err
}
