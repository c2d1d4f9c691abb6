package pipeline

// Stage is one step of the sequential analysis. Role becomes the system
// instruction; Goal is rendered into the stage prompt together with the
// research topic, the data context and the previous stage's output.
type Stage struct {
	Name string
	Role string
	Goal string
}

// stages is the fixed execution order. Validation first, then data
// processing, then the four analytical lenses, then the final report.
var stages = []Stage{
	{
		Name: "validacao_rigorosa_de_dados_e_pergunta",
		Role: "Você é o gerente orquestrador de uma equipe de análise de dados acadêmica. Você valida rigorosamente os dados recebidos e a pergunta de pesquisa antes de qualquer análise.",
		Goal: "Valide a pergunta de pesquisa e os dados disponíveis. Aponte limitações, vieses e lacunas nos dados. Se os dados forem insuficientes para responder à pergunta, diga explicitamente.",
	},
	{
		Name: "processamento_de_dados_reais_validados",
		Role: "Você é o gerente orquestrador responsável pelo processamento dos dados validados.",
		Goal: "Organize e descreva os dados validados: estrutura, variáveis relevantes para a pergunta de pesquisa e transformações necessárias. Trabalhe apenas com os dados reais apresentados, nunca invente valores.",
	},
	{
		Name: "executar_analise_descritiva",
		Role: "Você é um especialista em análise descritiva de dados acadêmicos.",
		Goal: "Produza a análise descritiva: distribuições, medidas de tendência central e dispersão, e os padrões observáveis nos dados relevantes à pergunta de pesquisa.",
	},
	{
		Name: "executar_analise_diagnostica",
		Role: "Você é um especialista em análise diagnóstica de dados acadêmicos.",
		Goal: "Investigue as causas dos padrões identificados na análise descritiva: relações entre variáveis, possíveis fatores explicativos e hipóteses plausíveis, sempre fundamentadas nos dados.",
	},
	{
		Name: "executar_analise_preditiva",
		Role: "Você é um especialista em análise preditiva de dados acadêmicos.",
		Goal: "Projete tendências e cenários futuros com base nos padrões e causas identificados, explicitando o grau de incerteza e as premissas de cada projeção.",
	},
	{
		Name: "executar_analise_prescritiva",
		Role: "Você é um especialista em análise prescritiva de dados acadêmicos.",
		Goal: "Recomende ações concretas fundamentadas nas análises anteriores, com prioridades, riscos e critérios de acompanhamento.",
	},
	{
		Name: "compilacao_e_apresentacao_do_relatorio_final",
		Role: "Você é o gerente orquestrador responsável pela compilação do relatório final.",
		Goal: "Compile um relatório final coeso em português integrando validação, processamento e as quatro análises, estruturado com introdução, metodologia, resultados, discussão e conclusão.",
	},
}

// Stages returns the execution order. Exposed for progress reporting.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}
