package query

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Pipeline orchestrates a question through classification, query
// synthesis, execution, fallback retrieval and rendering, and maintains
// per-session conversation state. Every branch converts failures into a
// fixed user-visible string; no error escapes Run.
type Pipeline struct {
	sessions    SessionStore
	classifier  *Classifier
	synthesizer *Synthesizer
	executor    *Executor
	retriever   *Retriever
	renderer    *Renderer
	llm         LanguageModel
	graph       GraphStore

	callTimeout  time.Duration
	fallbackTopK int
}

// PipelineOptions tunes orchestration behavior.
type PipelineOptions struct {
	// CallTimeout bounds each external round trip (LLM, graph, vector).
	CallTimeout time.Duration
	// FallbackTopK is the number of vector matches fetched on fallback.
	FallbackTopK int
}

// NewPipeline wires the pipeline from its collaborators.
func NewPipeline(sessions SessionStore, llm LanguageModel, graph GraphStore, embedder Embedder, index VectorIndex, opts PipelineOptions) *Pipeline {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 60 * time.Second
	}
	if opts.FallbackTopK <= 0 {
		opts.FallbackTopK = 1
	}

	return &Pipeline{
		sessions:     sessions,
		classifier:   NewClassifier(llm),
		synthesizer:  NewSynthesizer(llm),
		executor:     NewExecutor(graph),
		retriever:    NewRetriever(embedder, index),
		renderer:     NewRenderer(llm),
		llm:          llm,
		graph:        graph,
		callTimeout:  opts.CallTimeout,
		fallbackTopK: opts.FallbackTopK,
	}
}

// Run answers one question. It resolves the session, classifies the
// question with history context, dispatches to the matching branch,
// appends the exchange to the session, and returns the answer together
// with the (possibly freshly minted) session token.
func (p *Pipeline) Run(ctx context.Context, question, sessionID string) (string, string) {
	sessionID, created := p.sessions.GetOrCreate(sessionID)
	if created {
		log.Printf("New session: %s", sessionID)
	}

	historyText := p.sessions.HistoryText(sessionID)
	intent := p.classify(ctx, question, historyText)
	log.Printf("Routing %q to %s", question, intent)

	var answer string
	switch intent {
	case IntentGreeting:
		answer = p.greet(ctx, question, historyText)
	case IntentDateRelated:
		answer = p.answerFromGraph(ctx, VariantDate, question, historyText, false)
	case IntentMusicRelated:
		answer = p.answerFromGraph(ctx, VariantGeneral, question, historyText, true)
	default:
		answer = MsgRefusal
	}

	p.sessions.Append(sessionID, question, answer)
	return answer, sessionID
}

func (p *Pipeline) classify(ctx context.Context, question, historyText string) Intent {
	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return p.classifier.Classify(ctx, question, historyText)
}

func (p *Pipeline) greet(ctx context.Context, question, historyText string) string {
	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	answer, err := p.llm.Complete(ctx, fmt.Sprintf(greetingPrompt, historyContext(historyText), question))
	if err != nil {
		log.Printf("Greeting generation failed: %v", err)
		return "Hello! How can I help you with music news today?"
	}
	return answer
}

// retrievalStrategy is one step in an ordered retrieval chain. ok reports
// whether the strategy produced a usable payload; returning (_, false,
// nil) hands over to the next strategy.
type retrievalStrategy struct {
	name   string
	source string
	run    func(ctx context.Context) (payload string, ok bool, err error)
}

// answerFromGraph runs the graph retrieval path for a question and renders
// the first usable payload. When allowFallback is set (the entity/topic
// intent), an empty graph result hands over to vector search; the
// date/aggregation intent is graph-only and an empty result is terminal.
func (p *Pipeline) answerFromGraph(ctx context.Context, variant Variant, question, historyText string, allowFallback bool) string {
	strategies := []retrievalStrategy{
		{
			name:   "knowledge-graph",
			source: "neo4j",
			run: func(ctx context.Context) (string, bool, error) {
				cypher, err := p.synthesizer.Synthesize(ctx, variant, question, p.graph.Schema())
				if err != nil {
					return "", false, err
				}
				rows, err := p.executor.Execute(ctx, cypher)
				if err != nil {
					return "", false, err
				}
				if rows == nil {
					return "", false, nil
				}
				return fmt.Sprintf("%v", rows), true, nil
			},
		},
	}

	if allowFallback {
		strategies = append(strategies, retrievalStrategy{
			name:   "vector-fallback",
			source: "pgvector",
			run: func(ctx context.Context) (string, bool, error) {
				snippets, err := p.retriever.SemanticSearch(ctx, question, p.fallbackTopK)
				if err != nil {
					return "", false, err
				}
				if len(snippets) == 0 {
					return "", false, nil
				}
				return joinSnippets(snippets), true, nil
			},
		})
	}

	for _, strategy := range strategies {
		callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
		payload, ok, err := strategy.run(callCtx)
		cancel()

		if err != nil {
			// Any failure in a strategy (synthesis, execution, timeout) is
			// terminal for the whole request, not a fallback trigger.
			log.Printf("Retrieval strategy %s failed: %v", strategy.name, err)
			return MsgExecutionError
		}
		if !ok {
			log.Printf("Retrieval strategy %s found nothing", strategy.name)
			continue
		}

		renderCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
		answer := p.renderer.Render(renderCtx, question, historyText, payload, strategy.source)
		cancel()
		return answer
	}

	return MsgNothingFound
}
