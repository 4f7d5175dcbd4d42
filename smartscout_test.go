package smartscout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senarath/smartscout/config"
	"github.com/senarath/smartscout/model"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MaxSteps = 0
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestAppRunsScriptedTurn(t *testing.T) {
	supModel := model.NewScriptedModel("sup")
	supModel.EnqueueText("Analyst")
	supModel.EnqueueText("FINISH")

	analystModel := model.NewScriptedModel("analyst")
	analystModel.EnqueueText("I recommend you buy JKH.")

	// The Researcher stays idle; its drained model would fail-safe anyway.
	app, err := New(config.Default(), func(o *Options) {
		o.SupervisorModel = supModel
		o.WorkerModels = map[string]model.Model{
			"Analyst":    analystModel,
			"Researcher": model.NewScriptedModel("researcher"),
		}
	})
	require.NoError(t, err)

	_, events, errs, err := app.Run(context.Background(), "s1", "should I buy JKH?")
	require.NoError(t, err)

	var lastText string
	for ev := range events {
		if ev.IsPartial() || ev.Content == nil {
			continue
		}
		if text := ev.Text(); text != "" && ev.Content.Role == "assistant" {
			lastText = text
		}
	}
	require.NoError(t, <-errs)

	assert.Contains(t, lastText, "I recommend you buy JKH.")
	assert.Contains(t, lastText, "Disclaimer", "guardrail runs before termination")
}
