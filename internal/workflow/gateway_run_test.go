package workflow

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/josephgoksu/agentwriting/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedChatModel is an eino chat model with a fixed plan reply and a fixed
// streamed reply, used to drive runs through a real llm.Gateway.
type scriptedChatModel struct {
	plan   string
	stream []string
}

func (m *scriptedChatModel) Generate(context.Context, []*schema.Message, ...model.Option) (*schema.Message, error) {
	return schema.AssistantMessage(m.plan, nil), nil
}

func (m *scriptedChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msgs := make([]*schema.Message, len(m.stream))
	for i, c := range m.stream {
		msgs[i] = schema.AssistantMessage(c, nil)
	}
	return schema.StreamReaderFromArray(msgs), nil
}

func TestRun_GatewayEmptyPlanReplyWritesDirectly(t *testing.T) {
	for _, reply := range []string{"", "  \n\t"} {
		chat := &scriptedChatModel{plan: reply, stream: []string{"some ", "words ", "here"}}
		gw := llm.NewGateway(llm.ProviderOpenAI, chat, llm.GatewayOptions{})

		res, err := NewRunner(noRetry(), nil).Run(context.Background(), "write a haiku", 2, gw)
		require.NoError(t, err, "reply=%q", reply)

		assert.Equal(t, StatusDone, res.Status)
		assert.Equal(t, 0, res.Plan.Len())
		assert.Equal(t, []string{"some words here"}, res.Document.Segments)
		assert.Equal(t, 3, res.Document.WordCount)
	}
}

func TestRun_GatewayEmptyStreamIsNotCommitted(t *testing.T) {
	chat := &scriptedChatModel{plan: "1. opening", stream: []string{" ", ""}}
	gw := llm.NewGateway(llm.ProviderOpenAI, chat, llm.GatewayOptions{})

	res, err := NewRunner(noRetry(), nil).Run(context.Background(), "write a haiku", 1, gw)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoContentGenerated)
}
