// Package echo is the offline candidate generator: it returns the user text
// as the only candidate so the deterministic stages still run.
package echo

import (
	"context"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (*Generator) ModelName() string {
	return "echo"
}

func (*Generator) Generate(ctx context.Context, req domain.GenerationRequest) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []string{req.UserText}, nil
}
