package tables

// Config holds the empirical scoring weights and acceptance thresholds
// for grid profiling. The values were tuned against mixed corpora of
// financial reports and academic papers; keep them in one place so a
// retune is a single change.
type Config struct {
	// Score weights.
	RowWeight        float64
	ColWeight        float64
	ShortTokenWeight float64
	NumericWeight    float64

	// Sentence-ratio penalty: Heavy above HeavyThreshold, Mid above
	// MidThreshold.
	SentenceHeavyThreshold float64
	SentenceHeavyPenalty   float64
	SentenceMidThreshold   float64
	SentenceMidPenalty     float64

	// Prose-fragment penalty tiers.
	FragmentHighThreshold float64
	FragmentHighPenalty   float64
	FragmentMidThreshold  float64
	FragmentMidPenalty    float64
	FragmentLowThreshold  float64
	FragmentLowPenalty    float64

	// Applied when prose signals dominate and tabular cells are scarce.
	ProseDominancePenalty float64

	AvgLenHighThreshold float64
	AvgLenHighPenalty   float64
	AvgLenMidThreshold  float64
	AvgLenMidPenalty    float64
	MaxLenThreshold     float64
	MaxLenPenalty       float64

	ShapeBonus    float64 // nRows >= 4, nCols >= 3, low fragment ratio
	EqualRowBonus float64
	DensityBonus  float64

	// BorderedBonus is added to the score of grids found by the
	// bordered strategy before the acceptance gate runs.
	BorderedBonus float64

	// Acceptance gate.
	MinRows    int
	MinCols    int
	MinDensity float64
	MinScore   float64

	// Post-gate veto for the positioned strategy.
	PositionedAvgLenVeto float64

	// Column alignment: fraction of numeric body cells required to
	// right-align.
	NumericAlignRatio           float64
	PositionedNumericAlignRatio float64
}

// DefaultConfig returns the tuned weight set.
func DefaultConfig() Config {
	return Config{
		RowWeight:        1.0,
		ColWeight:        0.8,
		ShortTokenWeight: 3.0,
		NumericWeight:    2.0,

		SentenceHeavyThreshold: 0.8,
		SentenceHeavyPenalty:   4.0,
		SentenceMidThreshold:   0.4,
		SentenceMidPenalty:     2.0,

		FragmentHighThreshold: 0.5,
		FragmentHighPenalty:   6.0,
		FragmentMidThreshold:  0.3,
		FragmentMidPenalty:    3.0,
		FragmentLowThreshold:  0.15,
		FragmentLowPenalty:    1.5,

		ProseDominancePenalty: 5.0,

		AvgLenHighThreshold: 80,
		AvgLenHighPenalty:   4.0,
		AvgLenMidThreshold:  50,
		AvgLenMidPenalty:    2.0,
		MaxLenThreshold:     100,
		MaxLenPenalty:       2.0,

		ShapeBonus:    2.0,
		EqualRowBonus: 1.5,
		DensityBonus:  1.0,

		BorderedBonus: 2.0,

		MinRows:    2,
		MinCols:    2,
		MinDensity: 0.25,
		MinScore:   2.0,

		PositionedAvgLenVeto: 50,

		NumericAlignRatio:           0.7,
		PositionedNumericAlignRatio: 0.5,
	}
}
