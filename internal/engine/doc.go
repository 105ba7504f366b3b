// Package engine runs predictions: it validates a score input, applies the
// configured response latency, answers repeats from the result cache, and
// records each new prediction to history.
package engine
