package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/services/query"
)

// Inputs describes one analysis run.
type Inputs struct {
	Topic string
	Files []string
}

// ProgressFunc is called before each stage runs with the 1-based stage
// number, the total stage count and the stage name.
type ProgressFunc func(stage, total int, name string)

// Pipeline executes the stage sequence for one analysis.
type Pipeline struct {
	client LLMClient
	engine *query.Engine
	logger *zap.Logger
}

// New creates a pipeline over the given model client.
func New(client LLMClient, engine *query.Engine, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		client: client,
		engine: engine,
		logger: logger,
	}
}

// Run executes every stage in order and returns the final report. Each
// stage sees the research topic, a structural summary of the data files and
// the previous stage's output. A stage failure aborts the run.
func (p *Pipeline) Run(ctx context.Context, in Inputs, progress ProgressFunc) (string, error) {
	if strings.TrimSpace(in.Topic) == "" {
		return "", fmt.Errorf("tema de pesquisa é obrigatório")
	}

	dataContext := p.describeFiles(in.Files)
	previous := ""

	for i, stage := range stages {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("análise cancelada na etapa %s: %w", stage.Name, err)
		}
		if progress != nil {
			progress(i+1, len(stages), stage.Name)
		}

		start := time.Now()
		prompt := buildPrompt(in.Topic, dataContext, stage, previous)

		output, err := p.client.Generate(ctx, stage.Role, prompt)
		if err != nil {
			return "", fmt.Errorf("etapa %s falhou: %w", stage.Name, err)
		}

		p.logger.Info("pipeline stage completed",
			zap.String("etapa", stage.Name),
			zap.Duration("duracao", time.Since(start)),
			zap.Int("tamanho_saida", len(output)))

		previous = output
	}

	return previous, nil
}

// describeFiles profiles every readable tabular input. Files that cannot be
// profiled contribute a note instead of aborting the run.
func (p *Pipeline) describeFiles(files []string) string {
	if len(files) == 0 {
		return "Nenhum arquivo de dados foi fornecido."
	}

	var b strings.Builder
	for _, f := range files {
		if !isDelimited(f) {
			fmt.Fprintf(&b, "Arquivo %s: conteúdo não tabular, não inspecionado.\n\n", filepath.Base(f))
			continue
		}
		profile, err := p.engine.Describe(f)
		if err != nil {
			p.logger.Warn("file profiling failed", zap.String("file", f), zap.Error(err))
			fmt.Fprintf(&b, "Arquivo %s: não pôde ser inspecionado (%v).\n\n", filepath.Base(f), err)
			continue
		}
		b.WriteString(query.Summary(profile))
		b.WriteString("\n")
	}
	return b.String()
}

func buildPrompt(topic, dataContext string, stage Stage, previous string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pergunta de pesquisa: %s\n\n", topic)
	fmt.Fprintf(&b, "Contexto dos dados:\n%s\n", dataContext)
	if previous != "" {
		fmt.Fprintf(&b, "Resultado da etapa anterior:\n%s\n\n", previous)
	}
	fmt.Fprintf(&b, "Sua tarefa: %s\n", stage.Goal)
	b.WriteString("Responda em português. Baseie-se exclusivamente nos dados apresentados.")
	return b.String()
}

func isDelimited(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return true
	}
	return false
}
