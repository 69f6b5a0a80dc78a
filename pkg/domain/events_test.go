package domain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainHooks(t *testing.T) {
	var calls []string
	first := LifecycleHooks{
		OnStep: func(_ context.Context, e *StepEvent) { calls = append(calls, "first "+e.Message) },
	}
	second := LifecycleHooks{
		OnStep:    func(_ context.Context, e *StepEvent) { calls = append(calls, "second "+e.Message) },
		OnDiagram: func(_ context.Context, e *DiagramEvent) { calls = append(calls, "diagram "+e.Title) },
	}

	chained := ChainHooks(first, second, LifecycleHooks{})
	ctx := context.Background()
	chained.OnStep(ctx, &StepEvent{Message: "go"})
	chained.OnDiagram(ctx, &DiagramEvent{Title: "Alpha"})
	chained.OnCycleStart(ctx, &CycleEvent{})
	chained.OnCycleEnd(ctx, &CycleEvent{})

	assert.Equal(t, []string{"first go", "second go", "diagram Alpha"}, calls)
}

func TestEvents_CarryErrorText(t *testing.T) {
	data, err := json.Marshal(&DiagramEvent{Title: "Quiet", Outcome: OutcomeFailed, Err: errors.New("can't do here"), Error: "can't do here"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"error":"can't do here"`)

	data, err = json.Marshal(&CycleEvent{Site: "https://example.org"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"error"`)
}
