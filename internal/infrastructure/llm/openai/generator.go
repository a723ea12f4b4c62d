// Package openai generates correction candidates with an OpenAI-compatible
// chat completions API, asking for all N choices in one request.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/infrastructure/llm"
	"github.com/kirillkom/friendsfixer/internal/infrastructure/resilience"
)

type Sampling struct {
	MaxNewTokens int
	Temperature  float64
	TopP         float64
	Seed         int
}

type Options struct {
	BaseURL  string
	Timeout  time.Duration
	Sampling Sampling
	Executor *resilience.Executor
}

type Generator struct {
	client   oai.Client
	model    string
	sampling Sampling
	executor *resilience.Executor
}

func NewGenerator(apiKey, model string, opts Options) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &Generator{
		client:   oai.NewClient(reqOpts...),
		model:    model,
		sampling: opts.Sampling,
		executor: opts.Executor,
	}, nil
}

func (g *Generator) ModelName() string {
	return g.model
}

func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) ([]string, error) {
	params := g.buildParams(req)

	var resp *oai.ChatCompletion
	call := func(callCtx context.Context) error {
		out, err := g.client.Chat.Completions.New(callCtx, params)
		if err != nil {
			if ctxErr := callCtx.Err(); ctxErr != nil {
				return ctxErr
			}
			return asStatusError(err)
		}
		resp = out
		return nil
	}

	var err error
	if g.executor != nil {
		err = g.executor.Run(ctx, "openai.chat", call, resilience.ClassifyHTTP)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, resilience.Temporary("openai chat", err, resilience.ClassifyHTTP)
	}

	out := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		out = append(out, strings.TrimSpace(choice.Message.Content))
	}
	if len(out) == 0 {
		return nil, domain.NewError(domain.ErrTemporary, "openai chat", "empty choices in response")
	}
	return out, nil
}

func (g *Generator) buildParams(req domain.GenerationRequest) oai.ChatCompletionNewParams {
	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(llm.AppendSuppression(req.SystemPrompt, req.Suppress)),
			oai.UserMessage(req.UserText),
		},
		N:    param.NewOpt(int64(max(req.N, 1))),
		Seed: param.NewOpt(int64(g.sampling.Seed)),
	}
	if g.sampling.Temperature != 0 {
		params.Temperature = param.NewOpt(g.sampling.Temperature)
	}
	if g.sampling.TopP != 0 {
		params.TopP = param.NewOpt(g.sampling.TopP)
	}
	if g.sampling.MaxNewTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(g.sampling.MaxNewTokens))
	}
	return params
}

// asStatusError lifts API errors into the shared status error so retry
// classification treats every HTTP backend the same way.
func asStatusError(err error) error {
	var apiErr *oai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	return &resilience.StatusError{
		Backend:    "openai",
		Operation:  "chat",
		StatusCode: apiErr.StatusCode,
		Status:     http.StatusText(apiErr.StatusCode),
		Body:       apiErr.Message,
	}
}
