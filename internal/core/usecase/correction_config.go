package usecase

import (
	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/core/lexical"
)

// CorrectionConfig holds the tuning shared by every pipeline stage. It is
// copied into each component at construction and never mutated afterwards.
type CorrectionConfig struct {
	TopK              int
	MinSim            float64
	PostMinSim        float64
	KNoteSimThreshold float64
	Connectors        []string
	EnforceKNote      bool
	RerankN           int
	Stage             domain.Stage
	BlockBadTokens    bool
	SpanMaxNGram      int
}

func DefaultCorrectionConfig() CorrectionConfig {
	return CorrectionConfig{
		TopK:              4,
		MinSim:            0.22,
		PostMinSim:        0.35,
		KNoteSimThreshold: 0.28,
		Connectors:        []string{"Anyway,", "By the way,", "Oh, and", "On that note,", "Also,"},
		EnforceKNote:      true,
		RerankN:           3,
		Stage:             domain.StageBoth,
		BlockBadTokens:    true,
		SpanMaxNGram:      lexical.DefaultMaxNGram,
	}
}

func (c CorrectionConfig) normalized() CorrectionConfig {
	def := DefaultCorrectionConfig()
	if c.TopK <= 0 {
		c.TopK = def.TopK
	}
	if c.RerankN <= 0 {
		c.RerankN = def.RerankN
	}
	if c.SpanMaxNGram <= 0 {
		c.SpanMaxNGram = def.SpanMaxNGram
	}
	if len(c.Connectors) == 0 {
		c.Connectors = def.Connectors
	}
	c.Connectors = append([]string(nil), c.Connectors...)
	c.Stage = domain.ParseStage(string(c.Stage))
	return c
}
