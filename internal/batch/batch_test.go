package batch

import (
	"math/rand"
	"reflect"
	"slices"
	"testing"

	"github.com/ppiankov/fpaudit/internal/model"
)

func union(batches []Batch) map[model.Fingerprint]struct{} {
	all := make(map[model.Fingerprint]struct{})
	for _, b := range batches {
		for fp := range b {
			all[fp] = struct{}{}
		}
	}
	return all
}

func TestSplit_SingleBatch(t *testing.T) {
	perPackage := [][]model.Fingerprint{{1, 2}, {2, 3}}

	batches := Split(perPackage, 25)
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}

	got := batches[0].Fingerprints()
	want := []model.Fingerprint{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSplit_ChunksByPackage(t *testing.T) {
	perPackage := [][]model.Fingerprint{{1, 2, 3, 4}, {5}, {6}}

	batches := Split(perPackage, 2)
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if batches[0].Len() != 5 {
		t.Errorf("expected first batch to hold 5 fingerprints, got %d", batches[0].Len())
	}
	if !slices.Equal(batches[1].Fingerprints(), []model.Fingerprint{6}) {
		t.Errorf("expected last batch {6}, got %v", batches[1].Fingerprints())
	}
}

func TestSplit_SizeOne(t *testing.T) {
	perPackage := [][]model.Fingerprint{{1}, {2, 2}, {}}

	batches := Split(perPackage, 1)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if batches[1].Len() != 1 {
		t.Errorf("expected duplicate to collapse, got %v", batches[1].Fingerprints())
	}
	if batches[2].Len() != 0 {
		t.Errorf("expected empty batch for package without modules, got %v", batches[2].Fingerprints())
	}
}

func TestSplit_DedupIsPerChunk(t *testing.T) {
	perPackage := [][]model.Fingerprint{{7}, {7}}

	batches := Split(perPackage, 1)
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	for i, b := range batches {
		if _, ok := b[7]; !ok {
			t.Errorf("expected batch %d to contain shared fingerprint", i)
		}
	}
}

func TestSplit_NonPositiveSize(t *testing.T) {
	perPackage := [][]model.Fingerprint{{1}, {2}}

	for _, size := range []int{0, -3} {
		if got := len(Split(perPackage, size)); got != 2 {
			t.Errorf("size %d: expected 2 batches, got %d", size, got)
		}
	}
}

func TestSplit_Empty(t *testing.T) {
	if got := Split(nil, 25); len(got) != 0 {
		t.Errorf("expected no batches, got %d", len(got))
	}
}

func TestSplit_UnionCoversInput(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		perPackage := make([][]model.Fingerprint, rng.Intn(60))
		want := make(map[model.Fingerprint]struct{})
		for i := range perPackage {
			for j := rng.Intn(6); j > 0; j-- {
				fp := model.Fingerprint(rng.Intn(40))
				perPackage[i] = append(perPackage[i], fp)
				want[fp] = struct{}{}
			}
		}
		size := 1 + rng.Intn(30)

		batches := Split(perPackage, size)

		if got := union(batches); !reflect.DeepEqual(got, want) {
			t.Fatalf("trial %d: union %v does not match input %v", trial, got, want)
		}
		for i, b := range batches {
			fps := b.Fingerprints()
			for k := 1; k < len(fps); k++ {
				if fps[k] == fps[k-1] {
					t.Fatalf("trial %d: batch %d holds duplicate %d", trial, i, fps[k])
				}
			}
		}

		again := Split(perPackage, size)
		if !reflect.DeepEqual(batches, again) {
			t.Fatalf("trial %d: batching is not idempotent", trial)
		}
	}
}
