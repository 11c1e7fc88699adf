package llm

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"
)

// Prompt is a single-turn request.
type Prompt struct {
	System string
	User   string
}

func (p Prompt) messages() []*schema.Message {
	msgs := make([]*schema.Message, 0, 2)
	if strings.TrimSpace(p.System) != "" {
		msgs = append(msgs, schema.SystemMessage(p.System))
	}
	return append(msgs, schema.UserMessage(p.User))
}

// ChunkStream yields text chunks until io.EOF. Close releases the connection
// and may be called at any point, more than once.
type ChunkStream interface {
	Recv() (string, error)
	Close() error
}

// GatewayOptions tune a Gateway.
type GatewayOptions struct {
	CallTimeout       time.Duration
	RequestsPerSecond float64
	Temperature       float32
	MaxTokens         int
}

// Gateway normalizes one chat model behind Complete/StreamComplete.
// It is safe for concurrent use.
type Gateway struct {
	provider Provider
	chat     model.BaseChatModel
	opts     GatewayOptions
	limiter  *rate.Limiter
}

// NewGateway wraps an Eino chat model.
func NewGateway(provider Provider, chat model.BaseChatModel, opts GatewayOptions) *Gateway {
	g := &Gateway{provider: provider, chat: chat, opts: opts}
	if opts.RequestsPerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return g
}

// Provider returns the provider this gateway talks to.
func (g *Gateway) Provider() Provider {
	return g.provider
}

// Complete performs a non-streaming call and returns the full text.
func (g *Gateway) Complete(ctx context.Context, p Prompt) (string, error) {
	callCtx, cancel := g.callContext(ctx)
	defer cancel()

	if err := g.wait(callCtx); err != nil {
		return "", g.wrap(ctx, "complete", err)
	}

	msg, err := g.chat.Generate(callCtx, p.messages(), g.modelOptions()...)
	if err != nil {
		return "", g.wrap(ctx, "complete", err)
	}
	if msg == nil {
		return "", &Error{Kind: KindMalformed, Provider: g.provider, Op: "complete", Err: errors.New("nil message")}
	}
	// Empty content is a valid reply here; callers decide what it means.
	return msg.Content, nil
}

// StreamComplete opens a streaming call. The per-call timeout covers the whole
// stream and is released by Close.
func (g *Gateway) StreamComplete(ctx context.Context, p Prompt) (ChunkStream, error) {
	callCtx, cancel := g.callContext(ctx)

	if err := g.wait(callCtx); err != nil {
		cancel()
		return nil, g.wrap(ctx, "stream", err)
	}

	reader, err := g.chat.Stream(callCtx, p.messages(), g.modelOptions()...)
	if err != nil {
		cancel()
		return nil, g.wrap(ctx, "stream", err)
	}
	if reader == nil {
		cancel()
		return nil, &Error{Kind: KindMalformed, Provider: g.provider, Op: "stream", Err: errors.New("nil stream")}
	}
	return &stream{g: g, ctx: ctx, cancel: cancel, reader: reader}, nil
}

func (g *Gateway) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.opts.CallTimeout > 0 {
		return context.WithTimeout(ctx, g.opts.CallTimeout)
	}
	return context.WithCancel(ctx)
}

func (g *Gateway) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	return g.limiter.Wait(ctx)
}

func (g *Gateway) modelOptions() []model.Option {
	opts := []model.Option{model.WithTemperature(g.opts.Temperature)}
	if g.opts.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(g.opts.MaxTokens))
	}
	return opts
}

type stream struct {
	g      *Gateway
	ctx    context.Context // caller context, distinguishes cancel from timeout
	cancel context.CancelFunc
	reader *schema.StreamReader[*schema.Message]

	closeOnce sync.Once
	done      bool
	content   bool
}

func (s *stream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}
	if err := s.ctx.Err(); err != nil {
		s.Close()
		return "", s.g.wrap(s.ctx, "stream", err)
	}

	msg, err := s.reader.Recv()
	if errors.Is(err, io.EOF) {
		s.Close()
		if !s.content {
			return "", &Error{Kind: KindMalformed, Provider: s.g.provider, Op: "stream", Err: errEmptyResponse}
		}
		return "", io.EOF
	}
	if err != nil {
		s.Close()
		return "", s.g.wrap(s.ctx, "stream", err)
	}
	// A chunk that raced with cancellation is dropped.
	if err := s.ctx.Err(); err != nil {
		s.Close()
		return "", s.g.wrap(s.ctx, "stream", err)
	}
	if msg == nil {
		s.Close()
		return "", &Error{Kind: KindMalformed, Provider: s.g.provider, Op: "stream", Err: errors.New("nil chunk")}
	}
	if strings.TrimSpace(msg.Content) != "" {
		s.content = true
	}
	return msg.Content, nil
}

func (s *stream) Close() error {
	s.closeOnce.Do(func() {
		s.done = true
		s.reader.Close()
		s.cancel()
	})
	return nil
}
