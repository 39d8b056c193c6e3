package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/royfox/little-reviews/internal/metrics"
	"github.com/royfox/little-reviews/internal/models"
	"github.com/royfox/little-reviews/internal/storage"
)

// memStore is an in-memory storage.Provider.
type memStore struct {
	files   map[string]string
	listErr error
	readErr map[string]error
}

func (m *memStore) List() ([]models.RecordFile, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.RecordFile
	for name := range m.files {
		out = append(out, models.RecordFile{Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) Read(name string) ([]byte, error) {
	if err := m.readErr[name]; err != nil {
		return nil, err
	}
	data, ok := m.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(data), nil
}

var _ storage.Provider = (*memStore)(nil)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
}

func rec(title, date string) string {
	return "title: " + title + "\ntype: Movie\nrating: 4\ntext: ok\nreleaseYear: 2001\nreviewDate: " + date + "\n"
}

func newAggregator(files map[string]string) *Aggregator {
	return New(&memStore{files: files}, quietLogger(), WithClock(fixedClock))
}

func ids(records []models.Review) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestCollect_OrdersByReviewDateDesc(t *testing.T) {
	a := newAggregator(map[string]string{
		"a.yaml": rec("A", "2024-01-01"),
		"b.yaml": rec("B", "2024-03-01"),
		"c.yaml": rec("C", "2024-02-01"),
	})

	records, rep, err := a.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, ids(records))
	assert.Equal(t, 3, rep.Scanned)
	assert.Equal(t, 3, rep.Included)

	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].ReviewDate.After(records[i-1].ReviewDate))
	}
}

func TestCollect_TiesKeepScanOrder(t *testing.T) {
	a := newAggregator(map[string]string{
		"z.yaml": rec("Z", "2024-01-01"),
		"m.yaml": rec("M", "2024-01-01"),
		"a.yml":  rec("A", "2024-01-01"),
	})
	records, _, err := a.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "m", "z"}, ids(records))
}

func TestCollect_IDFromFileNameOverridesContent(t *testing.T) {
	a := newAggregator(map[string]string{
		"my-review.yml": "id: something-else\n" + rec("Renamed Title", "2024-01-01"),
		"mapped.yaml":   "id: {a: 1}\n" + rec("Mapped", "2024-01-02"),
		"listed.yaml":   "id: [1, 2]\n" + rec("Listed", "2024-01-03"),
	})
	records, rep, err := a.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Empty(t, rep.Skipped)
	assert.Equal(t, "listed", records[0].ID)
	assert.Equal(t, "mapped", records[1].ID)
	assert.Equal(t, "my-review", records[2].ID)
	assert.Equal(t, "Renamed Title", records[2].Title)
}

func TestCollect_SkipsBadFiles(t *testing.T) {
	skippedBefore := testutil.ToFloat64(metrics.RecordsSkipped.WithLabelValues(ReasonShape))

	a := New(&memStore{
		files: map[string]string{
			"good.yaml":    rec("Good", "2024-01-01"),
			"broken.yaml":  "title: [unclosed\n",
			"scalar.yaml":  "just text",
			"list.yaml":    "- a\n- b\n",
			"invalid.yaml": "title: X\ntype: Podcast\nrating: 3\nreleaseYear: 2000\nreviewDate: 2024-01-01\n",
			"denied.yaml":  rec("Denied", "2024-01-01"),
		},
		readErr: map[string]error{"denied.yaml": os.ErrPermission},
	}, quietLogger(), WithClock(fixedClock))

	records, rep, err := a.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, ids(records))
	assert.Equal(t, 6, rep.Scanned)

	reasons := map[string]string{}
	for _, s := range rep.Skipped {
		reasons[s.File] = s.Reason
	}
	assert.Equal(t, map[string]string{
		"broken.yaml":  ReasonParse,
		"scalar.yaml":  ReasonShape,
		"list.yaml":    ReasonShape,
		"invalid.yaml": ReasonInvalid,
		"denied.yaml":  ReasonRead,
	}, reasons)

	assert.Equal(t, skippedBefore+2, testutil.ToFloat64(metrics.RecordsSkipped.WithLabelValues(ReasonShape)))
}

func TestCollect_CollisionLaterFileWins(t *testing.T) {
	a := newAggregator(map[string]string{
		"dune.yaml": rec("First", "2024-01-01"),
		"dune.yml":  rec("Second", "2024-02-01"),
		"other.yml": rec("Other", "2024-01-15"),
	})
	records, rep, err := a.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"dune", "other"}, ids(records))
	assert.Equal(t, "Second", records[0].Title)
	require.Len(t, rep.Collisions, 1)
	assert.Equal(t, Collision{ID: "dune", Kept: "dune.yml", Dropped: "dune.yaml"}, rep.Collisions[0])
}

func TestCollect_EmptyStore(t *testing.T) {
	records, rep, err := newAggregator(map[string]string{}).Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, rep.Scanned)
}

func TestCollect_ListErrorIsFatal(t *testing.T) {
	a := New(&memStore{listErr: errors.New("boom")}, quietLogger())
	_, _, err := a.Collect(context.Background())
	require.Error(t, err)
}

func TestCollect_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := newAggregator(map[string]string{"a.yaml": rec("A", "2024-01-01")}).Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_WritesDeterministicArtifact(t *testing.T) {
	recordsDir := filepath.Join(t.TempDir(), "content", "reviews")
	store, err := storage.OpenFS(recordsDir)
	require.NoError(t, err)
	for name, body := range map[string]string{
		"a.yaml": rec("A", "2024-01-01"),
		"b.yaml": rec("B", "2024-03-01"),
		"c.yaml": rec("C", "2024-02-01"),
	} {
		require.NoError(t, os.WriteFile(filepath.Join(recordsDir, name), []byte(body), 0o644))
	}

	out := filepath.Join(t.TempDir(), "public", "reviews.json")
	a := New(store, quietLogger(), WithClock(fixedClock))

	rep1, err := a.Build(context.Background(), out)
	require.NoError(t, err)
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	rep2, err := a.Build(context.Background(), out)
	require.NoError(t, err)
	second, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, rep1.Digest, rep2.Digest)

	var got []models.Review
	require.NoError(t, json.Unmarshal(first, &got))
	assert.Equal(t, []string{"b", "c", "a"}, ids(got))
}

func TestBuild_EmptyStoreWritesEmptyArray(t *testing.T) {
	store, err := storage.OpenFS(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "reviews.json")
	require.NoError(t, os.WriteFile(out, []byte(`[{"id":"stale"}]`), 0o644))

	_, err = New(store, quietLogger()).Build(context.Background(), out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}
