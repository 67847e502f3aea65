// Package scoring is the boundary to the external spending quality
// engine. The engine itself lives outside this repository; its output is a
// 0-100 score per transaction that the read models consume as a value.
package scoring

import "github.com/clarity-cash/claritycash/domain"

// FixedProvider returns the same score for every transaction. It stands in
// for the remote engine in sandbox deployments and tests.
type FixedProvider struct {
	Value float64
}

var _ domain.ScoreProvider = FixedProvider{}

// Score implements domain.ScoreProvider.
func (p FixedProvider) Score(_ *domain.Transaction) float64 {
	return p.Value
}
