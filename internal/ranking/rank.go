package ranking

import (
	"math"
	"sort"

	"mailmind-backend/internal/documents"
)

const (
	// DefaultThreshold is the minimum cosine similarity for a document to
	// count as relevant context.
	DefaultThreshold = 0.8
	// DefaultTopN caps how many documents are handed to the generation step.
	DefaultTopN = 5
)

// Match pairs a candidate document with its similarity to the query.
type Match struct {
	Document   documents.Document
	Similarity float64
}

// Rank scores candidates against the query vector and returns the matches at
// or above threshold, best first, truncated to topN. Candidates without an
// embedding are skipped entirely rather than scored zero. An empty result is
// a normal outcome, not an error.
func Rank(query []float64, candidates []documents.Document, threshold float64, topN int) []Match {
	if topN <= 0 {
		topN = DefaultTopN
	}

	matches := make([]Match, 0, len(candidates))
	for _, doc := range candidates {
		if len(doc.Embedding) == 0 {
			continue
		}
		sim := CosineSimilarity(query, doc.Embedding)
		if sim >= threshold {
			matches = append(matches, Match{Document: doc, Similarity: sim})
		}
	}

	// Stable: ties keep the candidates' original relative order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|). A zero-magnitude vector has
// no defined direction; similarity is 0 in that case so the function stays
// total over its input domain.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
