package briefing

// StepInfo carries the header text shown above each step.
type StepInfo struct {
	Step        Step
	Title       string
	Description string
}

// Steps describes the wizard screens in order.
var Steps = []StepInfo{
	{Step: 1, Title: "Informações da startup", Description: "Dados básicos sobre sua empresa"},
	{Step: 2, Title: "Problema & Solução", Description: "Defina o problema e sua proposta de valor"},
	{Step: 3, Title: "Objetivos & Recursos", Description: "Metas, cronograma e orçamento"},
}

// Info returns the header for a step, falling back to the first step.
func Info(step Step) StepInfo {
	if !step.Valid() {
		return Steps[0]
	}
	return Steps[int(step)-1]
}

// Option is one selectable value for a choice field.
type Option struct {
	Value string
	Label string
}

// Prompt describes how a field is presented to the user.
type Prompt struct {
	Label       string
	Placeholder string
	Help        string
	Multiline   bool
	Options     []Option
}

// IsChoice reports whether the field is picked from a fixed catalog.
func (p Prompt) IsChoice() bool {
	return len(p.Options) > 0
}

// IndustryOptions are the accepted industry values.
var IndustryOptions = []Option{
	{Value: "fintech", Label: "Fintech"},
	{Value: "edtech", Label: "Edtech"},
	{Value: "healthtech", Label: "Healthtech"},
	{Value: "ecommerce", Label: "E-commerce"},
	{Value: "saas", Label: "SaaS"},
	{Value: "marketplace", Label: "Marketplace"},
	{Value: "other", Label: "Outro"},
}

// TimelineOptions are the accepted timeline values.
var TimelineOptions = []Option{
	{Value: "1-month", Label: "1 mês"},
	{Value: "3-months", Label: "3 meses"},
	{Value: "6-months", Label: "6 meses"},
	{Value: "1-year", Label: "1 ano"},
	{Value: "flexible", Label: "Flexível"},
}

// BudgetOptions are the accepted budget ranges.
var BudgetOptions = []Option{
	{Value: "up-to-10k", Label: "Até R$ 10.000"},
	{Value: "10k-50k", Label: "R$ 10.000 - R$ 50.000"},
	{Value: "50k-100k", Label: "R$ 50.000 - R$ 100.000"},
	{Value: "100k-plus", Label: "Acima de R$ 100.000"},
	{Value: "flexible", Label: "A discutir"},
}

var prompts = map[Field]Prompt{
	FieldCompanyName: {
		Label:       "Nome da startup",
		Placeholder: "Ex: TechInova",
		Help:        "Como sua startup é conhecida no mercado?",
	},
	FieldIndustry: {
		Label:       "Setor de atuação",
		Placeholder: "Selecione o setor",
		Help:        "Em que segmento sua startup atua?",
		Options:     IndustryOptions,
	},
	FieldTargetAudience: {
		Label:       "Público-alvo",
		Placeholder: "Ex: Pequenos empreendedores entre 25-45 anos que buscam soluções financeiras digitais...",
		Help:        "Descreva detalhadamente quem são seus clientes ideais",
		Multiline:   true,
	},
	FieldProblem: {
		Label:       "Problema que resolve",
		Placeholder: "Descreva o problema principal que sua startup resolve...",
		Help:        "Qual dor do mercado sua startup alivia?",
		Multiline:   true,
	},
	FieldSolution: {
		Label:       "Sua solução",
		Placeholder: "Explique como sua startup resolve esse problema...",
		Help:        "Como vocês entregam valor para o cliente?",
		Multiline:   true,
	},
	FieldObjectives: {
		Label:       "Objetivos do projeto",
		Placeholder: "Ex: Aumentar reconhecimento da marca, gerar 1000 leads qualificados...",
		Help:        "Quais resultados esperam alcançar?",
		Multiline:   true,
	},
	FieldTimeline: {
		Label:       "Prazo desejado",
		Placeholder: "Selecione o prazo",
		Options:     TimelineOptions,
	},
	FieldBudget: {
		Label:       "Orçamento disponível",
		Placeholder: "Faixa de investimento",
		Options:     BudgetOptions,
	},
}

// PromptFor returns the presentation metadata of a field.
func PromptFor(f Field) Prompt {
	return prompts[f]
}

// LabelFor maps a stored choice value to its display label. Free-text fields
// and unknown values are returned unchanged.
func LabelFor(f Field, value string) string {
	for _, opt := range prompts[f].Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}
