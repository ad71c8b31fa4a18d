package handle

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRegistry(reg)
	require.NoError(t, err)

	h := r.Acquire([]byte("png-bytes"), "image/png")
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, 9, h.Size)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(r.live))

	res, err := r.Open(h.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), res.Data)
	assert.Equal(t, "image/png", res.ContentType)

	require.NoError(t, r.Release(h.ID))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, float64(0), testutil.ToFloat64(r.live))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.released))

	_, err = r.Open(h.ID)
	assert.ErrorIs(t, err, ErrUnknownHandle)
}

func TestRegistry_DoubleRelease(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	h := r.Acquire(nil, "image/png")
	require.NoError(t, r.Release(h.ID))
	assert.ErrorIs(t, r.Release(h.ID), ErrUnknownHandle)
	assert.ErrorIs(t, r.Release("never-issued"), ErrUnknownHandle)
	assert.Equal(t, float64(1), testutil.ToFloat64(r.released))
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRegistry(reg)
	require.NoError(t, err)

	_, err = NewRegistry(reg)
	assert.Error(t, err)
}

func TestRegistry_ConcurrentReleaseOnlyOnce(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)
	h := r.Acquire([]byte("x"), "image/png")

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Release(h.ID) == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
}

func TestURL(t *testing.T) {
	assert.Equal(t, "/handles/abc", URL("abc"))
}
