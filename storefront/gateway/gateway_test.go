package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"medcart/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptLoader_ConcurrentCallersShareOneFetch(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_, _ = w.Write([]byte("window.Razorpay = function(){};"))
	}))
	defer srv.Close()

	l := NewScriptLoader(srv.Client(), srv.URL)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = l.Ensure(context.Background())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.True(t, l.Loaded())

	require.NoError(t, l.Ensure(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestScriptLoader_RetriesAfterFailure(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	l := NewScriptLoader(srv.Client(), srv.URL)

	assert.Error(t, l.Ensure(context.Background()))
	assert.False(t, l.Loaded())

	require.NoError(t, l.Ensure(context.Background()))
	assert.Equal(t, []byte("ok"), l.Script())
}

type loaderFunc func(ctx context.Context) error

func (f loaderFunc) Ensure(ctx context.Context) error { return f(ctx) }

type recordingWidget struct {
	opened []Options
}

func (w *recordingWidget) Open(_ context.Context, opts Options, _ Handlers) error {
	w.opened = append(w.opened, opts)
	return nil
}

func TestBridge_OpensOnlyAfterScriptLoads(t *testing.T) {
	w := &recordingWidget{}
	failing := NewBridge(loaderFunc(func(context.Context) error { return errors.New("offline") }), w)

	err := failing.Open(context.Background(), Options{}, Handlers{})
	assert.Error(t, err)
	assert.Empty(t, w.opened)

	ok := NewBridge(loaderFunc(func(context.Context) error { return nil }), w)
	opts := OptionsFrom(models.GatewaySession{
		Key: "rzp_test", Amount: 19300, Currency: "INR", OrderID: "order_GW1",
		Notes: map[string]string{"orderId": "order-1"},
	})
	require.NoError(t, ok.Open(context.Background(), opts, Handlers{}))
	require.Len(t, w.opened, 1)
	assert.Equal(t, int64(19300), w.opened[0].Amount)
	assert.Equal(t, "order-1", w.opened[0].Notes["orderId"])
}
