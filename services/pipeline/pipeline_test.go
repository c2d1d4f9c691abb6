package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/services/query"
)

// fakeClient replays canned responses and records the calls it saw.
type fakeClient struct {
	calls   []call
	fail    string // stage whose prompt triggers an error
	failErr error
}

type call struct {
	system string
	prompt string
}

func (f *fakeClient) Generate(_ context.Context, system, prompt string) (string, error) {
	f.calls = append(f.calls, call{system: system, prompt: prompt})
	if f.fail != "" && strings.Contains(prompt, goalOf(f.fail)) {
		return "", f.failErr
	}
	return fmt.Sprintf("saída da chamada %d", len(f.calls)), nil
}

func goalOf(stageName string) string {
	for _, s := range stages {
		if s.Name == stageName {
			return s.Goal
		}
	}
	return "\x00"
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dados.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestPipeline(client LLMClient) *Pipeline {
	return New(client, query.NewEngine(zap.NewNop()), zap.NewNop())
}

func TestRunExecutesEveryStageInOrder(t *testing.T) {
	client := &fakeClient{}
	p := newTestPipeline(client)

	var seen []string
	report, err := p.Run(context.Background(),
		Inputs{Topic: "evasão escolar"},
		func(stage, total int, name string) {
			assert.Equal(t, len(stages), total)
			assert.Equal(t, len(seen)+1, stage)
			seen = append(seen, name)
		})

	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("saída da chamada %d", len(stages)), report)
	require.Len(t, client.calls, len(stages))

	for i, s := range stages {
		assert.Equal(t, s.Name, seen[i])
		assert.Equal(t, s.Role, client.calls[i].system)
		assert.Contains(t, client.calls[i].prompt, "evasão escolar")
	}
}

func TestRunChainsPreviousStageOutput(t *testing.T) {
	client := &fakeClient{}
	p := newTestPipeline(client)

	_, err := p.Run(context.Background(), Inputs{Topic: "notas"}, nil)
	require.NoError(t, err)

	assert.NotContains(t, client.calls[0].prompt, "Resultado da etapa anterior")
	for i := 1; i < len(client.calls); i++ {
		assert.Contains(t, client.calls[i].prompt,
			fmt.Sprintf("saída da chamada %d", i))
	}
}

func TestRunEmbedsDataProfile(t *testing.T) {
	csv := writeCSV(t, "nome,nota\nAna,8.5\nBruno,7.0\n")
	client := &fakeClient{}
	p := newTestPipeline(client)

	_, err := p.Run(context.Background(),
		Inputs{Topic: "desempenho", Files: []string{csv}}, nil)
	require.NoError(t, err)

	prompt := client.calls[0].prompt
	assert.Contains(t, prompt, "nota")
	assert.Contains(t, prompt, "2 linhas")
}

func TestRunSurvivesUnreadableFile(t *testing.T) {
	client := &fakeClient{}
	p := newTestPipeline(client)

	_, err := p.Run(context.Background(),
		Inputs{Topic: "tema", Files: []string{"/nao/existe.csv"}}, nil)
	require.NoError(t, err)

	assert.Contains(t, client.calls[0].prompt, "não pôde ser inspecionado")
}

func TestRunRejectsEmptyTopic(t *testing.T) {
	p := newTestPipeline(&fakeClient{})

	_, err := p.Run(context.Background(), Inputs{Topic: "   "}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tema de pesquisa é obrigatório")
}

func TestRunStageFailureAbortsWithStageName(t *testing.T) {
	client := &fakeClient{
		fail:    "executar_analise_descritiva",
		failErr: errors.New("model unavailable"),
	}
	p := newTestPipeline(client)

	_, err := p.Run(context.Background(), Inputs{Topic: "tema"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executar_analise_descritiva")
	assert.ErrorContains(t, err, "model unavailable")
	assert.Len(t, client.calls, 3)
}

func TestRunHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(&fakeClient{})
	_, err := p.Run(ctx, Inputs{Topic: "tema"}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
