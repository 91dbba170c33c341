package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/deaguilarg/seguros-rag/internal/domain"
	"github.com/deaguilarg/seguros-rag/internal/port"
)

const systemPrompt = "Eres un asistente experto en seguros que responde preguntas " +
	"basándose únicamente en la información proporcionada."

const advisorInstructions = `Eres un asistente de seguros creado para apoyar a los asesores.
Tu rol es proporcionar información sobre seguros clara, precisa, concisa y personalizada
para ayudar a los asesores a responder preguntas de los clientes.

Sigue estas instrucciones:

1. Declara claramente tu rol: "Como Asistente de Seguros..."
2. Usa respuestas estructuradas, concisas y relevantes.
3. Basa tus respuestas exclusivamente en el contexto proporcionado; si es insuficiente, indícalo claramente.
4. Sugiere preguntas de seguimiento accionables que los asesores deberían hacer a los clientes.
5. Mantén un tono profesional pero amigable.
6. Reconoce claramente si careces de información para proporcionar una respuesta precisa.`

// AnswerUseCase generates a grounded answer from the chunks the search engine
// retrieved for the query.
type AnswerUseCase struct {
	engine *SearchEngine
	llm    port.LLM
	topK   int
}

// NewAnswerUseCase creates a new answer use case.
func NewAnswerUseCase(engine *SearchEngine, llm port.LLM, topK int) *AnswerUseCase {
	return &AnswerUseCase{engine: engine, llm: llm, topK: topK}
}

// Ask retrieves context for the query and generates an answer. When retrieval
// finds nothing above the score threshold, the answer says so instead of
// calling the model with an empty context.
func (u *AnswerUseCase) Ask(ctx context.Context, query string, filters map[string][]string) (*domain.Answer, error) {
	results, err := u.engine.Search(ctx, query, u.topK, filters)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return &domain.Answer{
			Query: query,
			Text:  "No he encontrado información relevante en los documentos disponibles para responder a esta pregunta.",
		}, nil
	}

	text, err := u.llm.Generate(ctx, systemPrompt, buildPrompt(query, results))
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}

	return &domain.Answer{Query: query, Text: text, Sources: results}, nil
}

// buildPrompt formats the retrieved chunks and the question into the user
// prompt sent to the model.
func buildPrompt(query string, results []domain.SearchResult) string {
	var b strings.Builder
	b.WriteString(advisorInstructions)
	b.WriteString("\n\nContexto relevante:\n\n")

	for i, r := range results {
		fmt.Fprintf(&b, "Documento %d:\n", i+1)
		fmt.Fprintf(&b, "Producto: %s\n", extraOr(r.Metadata.Extra, "producto", "No especificado"))
		fmt.Fprintf(&b, "Tipo de seguro: %s\n", extraOr(r.Metadata.Extra, "insurance_type", "No especificado"))
		fmt.Fprintf(&b, "Tipo de cobertura: %s\n", extraOr(r.Metadata.Extra, "coverage_type", "No especificado"))
		fmt.Fprintf(&b, "Texto: %s\n\n", r.Text)
	}

	fmt.Fprintf(&b, "Pregunta: %s", query)
	return b.String()
}

func extraOr(extra map[string]any, key, fallback string) string {
	if v, ok := extra[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
