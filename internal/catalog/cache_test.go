package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/minerals"
)

type fakeScanner struct {
	calls   atomic.Int32
	records map[i18n.Code][]minerals.Mineral
	err     error
	// gate, when set, blocks every Scan until closed.
	gate chan struct{}
	// hook runs inside Scan after the gate.
	hook func()
}

func (f *fakeScanner) Scan(_ context.Context, lang i18n.Code) (store.ScanResult, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.hook != nil {
		f.hook()
	}
	if f.err != nil {
		return store.ScanResult{}, f.err
	}
	return store.ScanResult{Minerals: f.records[lang]}, nil
}

func TestGetCachesPerLanguage(t *testing.T) {
	f := &fakeScanner{records: map[i18n.Code][]minerals.Mineral{
		"en": {{ID: "record.a.0x001", CommonName: "Quartz"}},
		"es": {{ID: "record.a.0x001", CommonName: "Cuarzo"}},
	}}
	c := New(f)
	ctx := context.Background()

	en1, err := c.Get(ctx, "en")
	require.NoError(t, err)
	en2, err := c.Get(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, en1.List(), en2.List())
	assert.Equal(t, int32(1), f.calls.Load())

	es, err := c.Get(ctx, "es")
	require.NoError(t, err)
	m, _ := es.Get("record.a.0x001")
	assert.Equal(t, "Cuarzo", m.CommonName)
	assert.Equal(t, int32(2), f.calls.Load())

	assert.Equal(t, []i18n.Code{"en", "es"}, c.Stats().Languages)
}

func TestInvalidateForcesRescan(t *testing.T) {
	f := &fakeScanner{records: map[i18n.Code][]minerals.Mineral{"en": {{ID: "record.a.0x001"}}}}
	c := New(f)
	ctx := context.Background()

	_, err := c.Get(ctx, "en")
	require.NoError(t, err)

	f.records["en"] = append(f.records["en"], minerals.Mineral{ID: "record.b.0x002"})
	stale, err := c.Get(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, 1, stale.Len(), "cached catalog must not see new records before invalidation")

	c.Invalidate()
	assert.Empty(t, c.Stats().Languages)
	assert.Equal(t, uint64(1), c.Stats().Generation)

	fresh, err := c.Get(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Len())
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestScanErrorIsNotCached(t *testing.T) {
	f := &fakeScanner{err: errors.New("disk gone")}
	c := New(f)

	_, err := c.Get(context.Background(), "en")
	require.Error(t, err)

	f.err = nil
	_, err = c.Get(context.Background(), "en")
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestConcurrentMissFirstInsertWins(t *testing.T) {
	f := &fakeScanner{
		records: map[i18n.Code][]minerals.Mineral{"en": {{ID: "record.a.0x001"}}},
		gate:    make(chan struct{}),
	}
	c := New(f)

	const n = 8
	results := make([]*minerals.Catalog, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cat, err := c.Get(context.Background(), "en")
			assert.NoError(t, err)
			results[i] = cat
		}(i)
	}
	for f.calls.Load() < n {
		runtime.Gosched()
	}
	close(f.gate)
	wg.Wait()

	winner, err := c.Get(context.Background(), "en")
	require.NoError(t, err)
	for _, r := range results {
		assert.Same(t, winner, r)
	}
}

func TestScanSpanningInvalidationIsNotCached(t *testing.T) {
	f := &fakeScanner{records: map[i18n.Code][]minerals.Mineral{"en": {{ID: "record.a.0x001"}}}}
	c := New(f)
	f.hook = func() {
		f.hook = nil
		c.Invalidate()
	}

	first, err := c.Get(context.Background(), "en")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Len())
	assert.Empty(t, c.Stats().Languages)
}

func TestWithDiskStore(t *testing.T) {
	s := store.New(t.TempDir())
	require.NoError(t, s.Ensure())
	write := func(id, body string) {
		dir := s.FolderPath(id)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "record.json"), []byte(body), 0o644))
	}
	write("record.silicate.0xaaa", `{"common_name":"Quartz"}`)

	c := New(s)
	ctx := context.Background()
	before, err := c.Get(ctx, "de")
	require.NoError(t, err)
	assert.Equal(t, []string{"record.silicate.0xaaa"}, before.IDs())

	write("record.oxide.0xbbb", `{"common_name":"Hematite"}`)
	cached, err := c.Get(ctx, "de")
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Len())

	c.Invalidate()
	after, err := c.Get(ctx, "de")
	require.NoError(t, err)
	assert.Equal(t, []string{"record.oxide.0xbbb", "record.silicate.0xaaa"}, after.IDs())
}
