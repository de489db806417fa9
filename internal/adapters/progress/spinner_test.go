package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

func TestSpinnerProgress_NonInteractive(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var out bytes.Buffer
	p := NewSpinnerProgress(&out, false)
	ctx := context.Background()

	p.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageCompiling, Message: "Compiling contracts", Spinner: true})
	p.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageDeploying, Current: 1, Total: 2, Message: "EventContract_Implementation"})
	p.Info("reusing EventContract_Proxy")
	p.Error("ERC20Mock failed")
	p.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageCompleted, Message: "Deployed"})

	lines := out.String()
	assert.Contains(t, lines, "Compiling contracts\n")
	assert.Contains(t, lines, "[1/2] EventContract_Implementation\n")
	assert.Contains(t, lines, "ℹ️  reusing EventContract_Proxy\n")
	assert.Contains(t, lines, "❌ ERC20Mock failed\n")
	assert.Contains(t, lines, "✅ Deployed in ")
}

func TestSpinnerProgress_Interactive(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var out bytes.Buffer
	p := NewSpinnerProgress(&out, true)
	ctx := context.Background()

	p.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageCompiling, Message: "Compiling contracts", Spinner: true})
	assert.NotNil(t, p.spinner)

	p.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageCompleted})
	assert.False(t, p.spinner.Active())
	assert.Contains(t, out.String(), "✅ Done in ")
}

func TestNopSink(t *testing.T) {
	sink := NewNopSink()
	assert.NotPanics(t, func() {
		sink.OnProgress(context.Background(), usecase.ProgressEvent{Message: "ignored"})
		sink.Info("ignored")
		sink.Error("ignored")
	})
}
