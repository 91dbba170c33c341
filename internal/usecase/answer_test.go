package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/deaguilarg/seguros-rag/internal/domain"
)

// fakeLLM records the prompts it receives and returns a fixed answer.
type fakeLLM struct {
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeLLM) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	return "Como Asistente de Seguros, la póliza cubre el robo.", nil
}

func (f *fakeLLM) ModelName() string { return "fake" }

func TestAskBuildsPromptFromResults(t *testing.T) {
	records := map[int]domain.ChunkRecord{
		0: {
			Filename: "moto-basico.pdf",
			Section:  "asegurado",
			Text:     "La cobertura incluye robo con una indemnización de 600 €.",
			Extra:    map[string]any{"producto": "Seguro de Moto", "insurance_type": "Motocicleta"},
		},
	}
	ix := &stubIndex{dim: 2, ids: []int{0}, dists: []float64{0.2}}
	engine := newTestEngine(ix, records, &stubEmbedder{vec: []float32{1, 0}})

	llm := &fakeLLM{}
	uc := NewAnswerUseCase(engine, llm, 5)

	answer, err := uc.Ask(context.Background(), "¿qué cubre la póliza?", nil)
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}

	if llm.calls != 1 {
		t.Fatalf("expected one model call, got %d", llm.calls)
	}
	if !strings.Contains(llm.lastUser, "Producto: Seguro de Moto") {
		t.Errorf("prompt missing product metadata:\n%s", llm.lastUser)
	}
	if !strings.Contains(llm.lastUser, "La cobertura incluye robo") {
		t.Errorf("prompt missing chunk text:\n%s", llm.lastUser)
	}
	if !strings.Contains(llm.lastUser, "Pregunta: ¿qué cubre la póliza?") {
		t.Errorf("prompt missing the question:\n%s", llm.lastUser)
	}
	if !strings.Contains(llm.lastSystem, "experto en seguros") {
		t.Errorf("unexpected system prompt: %s", llm.lastSystem)
	}

	if answer.Text == "" {
		t.Error("expected a non-empty answer")
	}
	if len(answer.Sources) != 1 || answer.Sources[0].Metadata.Filename != "moto-basico.pdf" {
		t.Errorf("expected the retrieved chunk as source, got %+v", answer.Sources)
	}
}

func TestAskWithoutResultsSkipsModel(t *testing.T) {
	ix := &stubIndex{dim: 2}
	engine := newTestEngine(ix, map[int]domain.ChunkRecord{}, &stubEmbedder{vec: []float32{1, 0}})

	llm := &fakeLLM{}
	uc := NewAnswerUseCase(engine, llm, 5)

	answer, err := uc.Ask(context.Background(), "¿cubre terremotos en Marte?", nil)
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if llm.calls != 0 {
		t.Errorf("model should not be called without context, got %d calls", llm.calls)
	}
	if !strings.Contains(answer.Text, "No he encontrado") {
		t.Errorf("expected the no-information answer, got %q", answer.Text)
	}
	if len(answer.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(answer.Sources))
	}
}
