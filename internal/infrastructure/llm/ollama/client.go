// Package ollama generates correction candidates through a local Ollama
// server's chat endpoint.
package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/infrastructure/llm"
	"github.com/kirillkom/friendsfixer/internal/infrastructure/resilience"
)

// Sampling mirrors the decoding knobs of the generation engine.
type Sampling struct {
	MaxNewTokens      int
	Temperature       float64
	TopP              float64
	TopK              int
	RepetitionPenalty float64
	Seed              int
}

type Options struct {
	Sampling  Sampling
	Timeout   time.Duration
	Executor  *resilience.Executor
	MaxFanOut int
}

type Generator struct {
	baseURL    string
	model      string
	sampling   Sampling
	fanOut     int
	httpClient *http.Client
	executor   *resilience.Executor
}

func NewGenerator(baseURL, model string, opts Options) *Generator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	fanOut := opts.MaxFanOut
	if fanOut <= 0 {
		fanOut = 4
	}
	return &Generator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		sampling:   opts.Sampling,
		fanOut:     fanOut,
		httpClient: &http.Client{Timeout: timeout},
		executor:   opts.Executor,
	}
}

func (g *Generator) ModelName() string {
	return g.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	NumPredict    int     `json:"num_predict,omitempty"`
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p,omitempty"`
	TopK          int     `json:"top_k,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	Seed          int     `json:"seed"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Generate issues req.N chat calls concurrently, each with its own seed, and
// returns the replies in call order.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) ([]string, error) {
	n := max(req.N, 1)
	system := llm.AppendSuppression(req.SystemPrompt, req.Suppress)

	out := make([]string, n)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.fanOut)
	for i := range n {
		group.Go(func() error {
			text, err := g.chat(groupCtx, system, req.UserText, g.sampling.Seed+i)
			if err != nil {
				return err
			}
			out[i] = text
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Generator) chat(ctx context.Context, system, user string, seed int) (string, error) {
	payload := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Options: chatOptions{
			NumPredict:    g.sampling.MaxNewTokens,
			Temperature:   g.sampling.Temperature,
			TopP:          g.sampling.TopP,
			TopK:          g.sampling.TopK,
			RepeatPenalty: g.sampling.RepetitionPenalty,
			Seed:          seed,
		},
	}

	var response chatResponse
	call := func(callCtx context.Context) error {
		return g.postJSON(callCtx, "/api/chat", payload, &response, "chat")
	}

	var err error
	if g.executor != nil {
		err = g.executor.Run(ctx, "ollama.chat", call, resilience.ClassifyHTTP)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", resilience.Temporary("ollama chat", err, resilience.ClassifyHTTP)
	}
	return strings.TrimSpace(response.Message.Content), nil
}
