package vector

// InnerProduct returns the inner product of two vectors (for normalized vectors equals cosine similarity).
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i] * b[i])
	}
	return dot
}

// CosineDistance returns 1 minus the cosine similarity of two vectors.
// Both inputs are expected to be L2-normalized; the result lies in [0, 2].
func CosineDistance(a, b []float32) float64 {
	return 1 - InnerProduct(a, b)
}
