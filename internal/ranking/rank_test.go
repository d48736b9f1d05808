package ranking

import (
	"math"
	"testing"

	"mailmind-backend/internal/documents"
)

func docWithEmbedding(id string, embedding []float64) documents.Document {
	return documents.Document{ID: id, UserID: "user-1", Embedding: embedding}
}

func TestCosineSimilarityIdenticalVectors(t *testing.T) {
	vectors := [][]float64{
		{1, 2, 3},
		{0.5, 0.5},
		{-4, 2, 0, 7},
	}
	for _, v := range vectors {
		if sim := CosineSimilarity(v, v); math.Abs(sim-1.0) > 1e-6 {
			t.Errorf("CosineSimilarity(%v, %v) = %v, want 1.0", v, v, sim)
		}
	}
}

func TestCosineSimilarityOrthogonalVectors(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{0, 1}
	if sim := CosineSimilarity(a, b); math.Abs(sim) > 1e-6 {
		t.Fatalf("CosineSimilarity = %v, want 0.0", sim)
	}
}

func TestCosineSimilarityOppositeVectors(t *testing.T) {
	a := []float64{1, 2}
	b := []float64{-1, -2}
	if sim := CosineSimilarity(a, b); math.Abs(sim+1.0) > 1e-6 {
		t.Fatalf("CosineSimilarity = %v, want -1.0", sim)
	}
}

func TestCosineSimilarityZeroMagnitude(t *testing.T) {
	a := []float64{0, 0, 0}
	b := []float64{1, 2, 3}
	if sim := CosineSimilarity(a, b); sim != 0 {
		t.Fatalf("CosineSimilarity with zero vector = %v, want 0", sim)
	}
	if sim := CosineSimilarity(b, a); sim != 0 {
		t.Fatalf("CosineSimilarity with zero vector = %v, want 0", sim)
	}
}

func TestRankSkipsCandidatesWithoutEmbedding(t *testing.T) {
	query := []float64{1, 0}
	candidates := []documents.Document{
		docWithEmbedding("no-embedding", nil),
		docWithEmbedding("match", []float64{1, 0}),
	}
	matches := Rank(query, candidates, 0.5, 5)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Document.ID != "match" {
		t.Fatalf("unexpected match: %s", matches[0].Document.ID)
	}
}

func TestRankFiltersBelowThreshold(t *testing.T) {
	query := []float64{1, 0}
	candidates := []documents.Document{
		docWithEmbedding("aligned", []float64{2, 0}),
		docWithEmbedding("orthogonal", []float64{0, 1}),
	}
	matches := Rank(query, candidates, 0.8, 5)
	if len(matches) != 1 || matches[0].Document.ID != "aligned" {
		t.Fatalf("expected only aligned doc, got %v", matches)
	}
}

func TestRankEmptyWhenNothingQualifies(t *testing.T) {
	query := []float64{1, 0}
	candidates := []documents.Document{
		docWithEmbedding("a", []float64{0, 1}),
		docWithEmbedding("b", []float64{-1, 0}),
	}
	matches := Rank(query, candidates, 0.8, 5)
	if len(matches) != 0 {
		t.Fatalf("expected empty result, got %v", matches)
	}
}

func TestRankSortedDescendingAndTruncated(t *testing.T) {
	query := []float64{1, 0}
	candidates := []documents.Document{
		docWithEmbedding("d1", []float64{1, 0.3}),
		docWithEmbedding("d2", []float64{1, 0}),
		docWithEmbedding("d3", []float64{1, 0.1}),
		docWithEmbedding("d4", []float64{1, 0.2}),
	}
	matches := Rank(query, candidates, 0.8, 3)
	if len(matches) != 3 {
		t.Fatalf("expected topN=3 matches, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Similarity > matches[i-1].Similarity {
			t.Fatalf("matches not sorted descending: %v", matches)
		}
	}
	if matches[0].Document.ID != "d2" {
		t.Fatalf("best match should be d2, got %s", matches[0].Document.ID)
	}
}

func TestRankTiesKeepOriginalOrder(t *testing.T) {
	query := []float64{1, 0}
	// Same direction, different magnitude: identical similarity.
	candidates := []documents.Document{
		docWithEmbedding("first", []float64{1, 0}),
		docWithEmbedding("second", []float64{3, 0}),
	}
	matches := Rank(query, candidates, 0.8, 5)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Document.ID != "first" || matches[1].Document.ID != "second" {
		t.Fatalf("tie broke original order: %s, %s", matches[0].Document.ID, matches[1].Document.ID)
	}
}

func TestRankDefaultTopN(t *testing.T) {
	query := []float64{1, 0}
	var candidates []documents.Document
	for i := 0; i < 10; i++ {
		candidates = append(candidates, docWithEmbedding("d", []float64{1, 0}))
	}
	matches := Rank(query, candidates, 0.8, 0)
	if len(matches) != DefaultTopN {
		t.Fatalf("expected default topN=%d, got %d", DefaultTopN, len(matches))
	}
}
