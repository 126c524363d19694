package ocr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-ingest/internal/infrastructure/config"
)

type fakeTranscriber struct {
	calls    atomic.Int32
	mu       sync.Mutex
	lastOpts Options
	text     string
	entered  chan struct{}
	release  chan struct{}
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, imageDataURI string, opts Options) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastOpts = opts
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, nil
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testConfig(workers, queue int) config.OCRConfig {
	return config.OCRConfig{Workers: workers, QueueSize: queue, MaxWidth: 800, Language: "eng"}
}

func TestWorkerLifecycle(t *testing.T) {
	fake := &fakeTranscriber{text: "Pancakes\nIngredients:\n1 cup flour"}
	w := NewWorker(testConfig(2, 4), fake, NewResultCache(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute}))
	img := testPNG(t, 20, 10)

	_, err := w.Recognize(context.Background(), img, Options{})
	assert.ErrorIs(t, err, ErrNotStarted)

	w.Start()
	w.Start()
	assert.True(t, w.Status().Started)

	text, err := w.Recognize(context.Background(), img, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Pancakes\nIngredients:\n1 cup flour", text)

	// 相同圖片走快取
	_, err = w.Recognize(context.Background(), img, Options{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, fake.calls.Load())
	assert.EqualValues(t, 2, w.Status().ProcessedCount)
	assert.Equal(t, 1, w.Status().CacheSize)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Recognize(context.Background(), img, Options{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWorkerMergesDefaultOptions(t *testing.T) {
	fake := &fakeTranscriber{text: "ok"}
	w := NewWorker(testConfig(1, 1), fake, nil)
	w.Start()
	defer w.Close()

	_, err := w.Recognize(context.Background(), testPNG(t, 10, 10), Options{})
	require.NoError(t, err)
	assert.Equal(t, Options{Language: "eng", MaxWidth: 800}, fake.lastOpts)

	_, err = w.Recognize(context.Background(), testPNG(t, 10, 10), Options{Language: "spa", MaxWidth: 200})
	require.NoError(t, err)
	assert.Equal(t, Options{Language: "spa", MaxWidth: 200}, fake.lastOpts)
}

func TestWorkerQueueFull(t *testing.T) {
	fake := &fakeTranscriber{text: "ok", entered: make(chan struct{}, 4), release: make(chan struct{})}
	w := NewWorker(testConfig(1, 1), fake, nil)
	w.Start()
	defer w.Close()
	img := testPNG(t, 10, 10)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	recognize := func() {
		defer wg.Done()
		_, err := w.Recognize(context.Background(), img, Options{})
		errs <- err
	}

	wg.Add(1)
	go recognize()
	<-fake.entered

	wg.Add(1)
	go recognize()
	require.Eventually(t, func() bool { return w.Status().QueueLength == 1 }, time.Second, 5*time.Millisecond)

	_, err := w.Recognize(context.Background(), img, Options{})
	assert.ErrorIs(t, err, ErrQueueFull)

	close(fake.release)
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestWorkerRespectsContext(t *testing.T) {
	fake := &fakeTranscriber{release: make(chan struct{})}
	w := NewWorker(testConfig(1, 1), fake, nil)
	w.Start()
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := w.Recognize(ctx, testPNG(t, 10, 10), Options{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkerRejectsInvalidImage(t *testing.T) {
	w := NewWorker(testConfig(1, 1), &fakeTranscriber{text: "x"}, nil)
	w.Start()
	defer w.Close()

	_, err := w.Recognize(context.Background(), []byte("not an image"), Options{})
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.EqualValues(t, 1, w.Status().FailedCount)
}

func TestPrepareImageDownscales(t *testing.T) {
	img, err := PrepareImage(testPNG(t, 400, 200), 100)

	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)
	assert.Equal(t, 100, img.Width)
	assert.Equal(t, 50, img.Height)
	assert.Contains(t, img.DataURI, "data:image/jpeg;base64,")
	assert.Len(t, img.Hash, 64)

	small, err := PrepareImage(testPNG(t, 40, 20), 100)
	require.NoError(t, err)
	assert.Equal(t, 40, small.Width)
}

func TestResultCacheEvictsLeastUsed(t *testing.T) {
	c := NewResultCache(config.CacheConfig{Enabled: true, MaxSize: 2, TTL: time.Minute})
	defer c.Close()

	c.Set("a", "A")
	c.Set("b", "B")
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", "C")

	assert.Equal(t, 2, c.Len())
	_, ok = c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", v)
}

func TestResultCacheExpires(t *testing.T) {
	c := NewResultCache(config.CacheConfig{Enabled: true, MaxSize: 2, TTL: time.Millisecond})
	defer c.Close()

	c.Set("a", "A")
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestDisabledResultCache(t *testing.T) {
	c := NewResultCache(config.CacheConfig{Enabled: false})
	assert.Nil(t, c)

	c.Set("a", "A")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
	c.Close()
}
