package model

import "math"

// sigmoid maps a raw relevance logit to a probability.
func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}

// yesProbability converts the raw (no, yes) logits at a judgment position
// into the probability of "yes" under a two-way softmax. Computed in log
// space so extreme logit gaps stay finite.
func yesProbability(noLogit float32, yesLogit float32) float32 {
	no := float64(noLogit)
	yes := float64(yesLogit)

	max := no
	if yes > max {
		max = yes
	}

	logSumExp := max + math.Log(math.Exp(no-max)+math.Exp(yes-max))

	return float32(math.Exp(yes - logSumExp))
}

// meanPool averages the token vectors of one sequence, counting only the
// positions marked true in the mask. Padding positions contribute nothing.
// The denominator is clamped so an all-padding row cannot divide by zero.
func meanPool(vecs [][]float32, mask []bool, dimensions int) []float32 {
	sum := make([]float64, dimensions)

	var count float64
	for i, vec := range vecs {
		if i < len(mask) && !mask[i] {
			continue
		}

		if len(vec) != dimensions {
			continue
		}

		for d, v := range vec {
			sum[d] += float64(v)
		}
		count++
	}

	const epsilon = 1e-9
	if count < epsilon {
		count = epsilon
	}

	pooled := make([]float32, dimensions)
	for d := range sum {
		pooled[d] = float32(sum[d] / count)
	}

	return pooled
}

// l2Normalize scales the vector to unit length. A zero vector is returned
// as is since there is no direction to preserve.
func l2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	if sum == 0 {
		return vec
	}

	norm := math.Sqrt(sum)

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / norm)
	}

	return normalized
}
