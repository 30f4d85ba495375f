package advisor

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"stockdeck/internal/models"
)

type stubLLM struct {
	reply string
	err   error
	seen  string
}

func (s *stubLLM) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	s.seen = user
	return s.reply, s.err
}

func sampleIdeas() []models.StrategyIdea {
	return []models.StrategyIdea{
		{Name: "Bull Call Spread", Bias: models.BiasBullish, Confidence: 72, Rationale: "trend up"},
		{Name: "Long Equity", Bias: models.BiasBullish, Confidence: 65, Rationale: "momentum"},
	}
}

func TestAnnotateFillsTopIdea(t *testing.T) {
	llm := &stubLLM{reply: "  Defined-risk upside play; theta works against it.  "}
	a := New(llm, zerolog.Nop())

	score := &models.SignalScore{Score: 42, Recommendation: "buy"}
	ideas := a.Annotate(context.Background(), "AAPL", score, sampleIdeas())

	if got := ideas[0].Commentary; got != "Defined-risk upside play; theta works against it." {
		t.Errorf("Commentary = %q, want trimmed reply", got)
	}
	if ideas[1].Commentary != "" {
		t.Error("only the top idea should get commentary")
	}

	for _, want := range []string{"AAPL", "Bull Call Spread", "42.0"} {
		if !strings.Contains(llm.seen, want) {
			t.Errorf("prompt missing %q:\n%s", want, llm.seen)
		}
	}
}

func TestAnnotateFailureLeavesIdeasUntouched(t *testing.T) {
	a := New(&stubLLM{err: fmt.Errorf("rate limited")}, zerolog.Nop())

	ideas := a.Annotate(context.Background(), "AAPL", nil, sampleIdeas())
	if ideas[0].Commentary != "" {
		t.Error("commentary set despite completion failure")
	}
}

func TestAnnotateDisabled(t *testing.T) {
	var a *Advisor
	if a.Enabled() {
		t.Error("nil advisor reports enabled")
	}

	ideas := a.Annotate(context.Background(), "AAPL", nil, sampleIdeas())
	if len(ideas) != 2 || ideas[0].Commentary != "" {
		t.Error("nil advisor modified ideas")
	}

	a = New(nil, zerolog.Nop())
	if a.Enabled() {
		t.Error("advisor without a client reports enabled")
	}
}

func TestAnnotateNoIdeas(t *testing.T) {
	a := New(&stubLLM{reply: "text"}, zerolog.Nop())
	if got := a.Annotate(context.Background(), "AAPL", nil, nil); got != nil {
		t.Errorf("Annotate(nil ideas) = %v, want nil", got)
	}
}
