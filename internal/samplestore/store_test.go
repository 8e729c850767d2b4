package samplestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
	"github.com/MeKo-Tech/noiseparams/internal/param"
)

func record(t *testing.T, name string, p param.Parameter, shape []int, seed int64) Record {
	t.Helper()
	arr, err := param.DrawSeeded(p, shape, seed)
	if err != nil {
		t.Fatalf("Failed to draw %s: %v", name, err)
	}
	return Record{Name: name, Param: p.String(), Seed: seed, Sample: arr}
}

func TestStore_RoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "samples.sqlite")

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	w, err := New(dbPath, Metadata{Name: "golden", Version: "1.0", Created: created})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}

	uniform := param.Must(param.NewUniform(0, 1))
	methods := param.Must(param.NewChoice([]string{"linear", "nearest"}, true, nil))
	recs := []Record{
		record(t, "uniform", uniform, []int{4, 5}, 1),
		record(t, "uniform", uniform, []int{4, 5}, 2),
		record(t, "methods", methods, []int{6}, 1),
	}
	for _, rec := range recs {
		if err := w.WriteSample(rec); err != nil {
			t.Fatalf("Failed to write sample: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	r, err := OpenReader(dbPath)
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer r.Close()

	meta, err := r.Metadata()
	if err != nil {
		t.Fatalf("Failed to read metadata: %v", err)
	}
	if meta.Name != "golden" || meta.Version != "1.0" || !meta.Created.Equal(created) {
		t.Errorf("Unexpected metadata: %+v", meta)
	}

	entries, err := r.Entries()
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Name != "methods" || entries[1].Seed != 1 || entries[2].Seed != 2 {
		t.Errorf("Entries not ordered: %+v", entries)
	}

	for _, rec := range recs {
		key := Key{Name: rec.Name, Seed: rec.Seed, Shape: ndarray.FormatShape(rec.Sample.Shape())}
		got, err := r.ReadSample(key)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", key, err)
		}
		if !got.Equal(rec.Sample) {
			t.Errorf("Sample %s changed on round trip: %s vs %s", key, got, rec.Sample)
		}
	}

	_, err = r.ReadSample(Key{Name: "uniform", Seed: 99, Shape: "4,5"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_BatchFlush(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "batch.sqlite")
	w, err := New(dbPath, Metadata{Name: "batch"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	w.batchSize = 3

	p := param.Const(1)
	for seed := int64(0); seed < 7; seed++ {
		if err := w.WriteSample(record(t, "one", p, []int{2}, seed)); err != nil {
			t.Fatalf("Failed to write sample: %v", err)
		}
	}
	// two full batches were flushed, one record is still buffered
	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM samples").Scan(&count); err != nil {
		t.Fatalf("Failed to count samples: %v", err)
	}
	if count != 6 {
		t.Errorf("Expected 6 flushed samples, got %d", count)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	if err := w.WriteSample(Record{Name: "empty"}); err == nil {
		t.Error("Expected error for record without sample")
	}
}

func TestOpenReader_MissingSchema(t *testing.T) {
	_, err := OpenReader(filepath.Join(t.TempDir(), "missing.sqlite"))
	if err == nil {
		t.Fatal("Expected error opening an empty database")
	}
}

func TestVerifier(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "verify.sqlite")
	w, err := New(dbPath, Metadata{Name: "verify"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}

	noise := param.Must(param.NewFrequencyNoise(-2, 8, "linear"))
	normal := param.Must(param.NewNormal(0, 1))
	for _, rec := range []Record{
		record(t, "noise", noise, []int{12, 12}, 5),
		record(t, "normal", normal, []int{10}, 5),
		record(t, "gone", normal, []int{3}, 5),
	} {
		if err := w.WriteSample(rec); err != nil {
			t.Fatalf("Failed to write sample: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	r, err := OpenReader(dbPath)
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer r.Close()

	v := &Verifier{Params: map[string]param.Parameter{
		"noise":  noise,
		"normal": param.Must(param.NewNormal(0, 2)),
	}}
	report, err := v.Verify(context.Background(), r)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if report.Checked != 3 || report.Matched != 1 {
		t.Errorf("Expected 3 checked and 1 matched, got %+v", report)
	}
	if len(report.Missing) != 1 || report.Missing[0].Name != "gone" {
		t.Errorf("Expected gone to be missing, got %+v", report.Missing)
	}
	if len(report.Mismatched) != 1 || report.Mismatched[0].Name != "normal" {
		t.Errorf("Expected normal to mismatch, got %+v", report.Mismatched)
	}
	if len(report.Changed) != 1 {
		t.Errorf("Expected one changed definition, got %+v", report.Changed)
	}
	if report.OK() {
		t.Error("Report should not be OK")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := v.Verify(ctx, r); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
