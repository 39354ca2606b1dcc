package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	r.calls = append(r.calls, v)
	r.mu.Unlock()
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestDebouncer_DeliversLatestValueOnce(t *testing.T) {
	rec := &recorder{}
	d := New(30*time.Millisecond, rec.record)

	d.Trigger("k")
	d.Trigger("ki")
	d.Trigger("kis")

	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"kis"}, rec.get())
}

func TestDebouncer_WaitsForQuietPeriod(t *testing.T) {
	rec := &recorder{}
	d := New(80*time.Millisecond, rec.record)

	start := time.Now()
	d.Trigger("a")
	time.Sleep(40 * time.Millisecond)
	d.Trigger("ab")

	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 120*time.Millisecond)
	assert.Equal(t, []string{"ab"}, rec.get())
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.record)

	d.Trigger("first")
	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, 5*time.Millisecond)

	d.Trigger("second")
	require.Eventually(t, func() bool { return len(rec.get()) == 2 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"first", "second"}, rec.get())
}

func TestDebouncer_Flush(t *testing.T) {
	rec := &recorder{}
	d := New(time.Hour, rec.record)

	assert.False(t, d.Flush())

	d.Trigger("now")
	assert.True(t, d.Flush())
	assert.Equal(t, []string{"now"}, rec.get())

	assert.False(t, d.Flush())
}

func TestDebouncer_Stop(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.record)

	d.Trigger("dropped")
	d.Stop()
	d.Trigger("ignored")

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.get())
	assert.False(t, d.Flush())
}

func TestNew_DefaultDelay(t *testing.T) {
	d := New(0, func(string) {})
	assert.Equal(t, DefaultDelay, d.delay)
	assert.Equal(t, 350*time.Millisecond, DefaultDelay)
}

func TestDebouncer_StopWaitsForDelivery(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var finished bool

	d := New(time.Millisecond, func(string) {
		close(entered)
		<-release
		finished = true
	})
	d.Trigger("slow")
	<-entered

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	d.Stop()

	assert.True(t, finished, "Stop returns only after the running delivery")
}
