package agent

import "strings"

// Persona selects which factory role the assistant answers as. The
// persona only changes the system prompt, never the retrieval or
// dispatch behavior.
type Persona string

// Available personas. DefaultPersona is used when the request names
// none or names one the portal does not know.
const (
	PersonaPCP        Persona = "pcp"
	PersonaSales      Persona = "sales"
	PersonaProduction Persona = "production"
	PersonaTooling    Persona = "tooling"

	DefaultPersona = PersonaPCP
)

// personaAliases maps pt-BR request values onto the canonical personas.
var personaAliases = map[string]Persona{
	"pcp":           PersonaPCP,
	"planejamento":  PersonaPCP,
	"sales":         PersonaSales,
	"vendas":        PersonaSales,
	"comercial":     PersonaSales,
	"production":    PersonaProduction,
	"producao":      PersonaProduction,
	"produção":      PersonaProduction,
	"tooling":       PersonaTooling,
	"ferramentaria": PersonaTooling,
}

// ParsePersona resolves a request value to a persona, falling back to
// DefaultPersona for unknown or empty values.
func ParsePersona(s string) Persona {
	if p, ok := personaAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p
	}
	return DefaultPersona
}

const basePrompt = "Você é o assistente do portal da Tecnoperfil, uma fábrica de " +
	"perfis de alumínio extrudados. Responda sempre em português do Brasil, " +
	"de forma objetiva, usando apenas as informações do contexto fornecido. " +
	"Quando o contexto não contiver a resposta, diga isso claramente em vez " +
	"de inventar dados."

// systemPrompts holds the role-specific framing appended to basePrompt.
var systemPrompts = map[Persona]string{
	PersonaPCP: "Você atende a equipe de PCP (Planejamento e Controle da " +
		"Produção). Priorize prazos de entrega, sequenciamento da carteira, " +
		"gargalos e pedidos em atraso.",
	PersonaSales: "Você atende a equipe comercial. Priorize clientes, valores " +
		"da carteira, status de pedidos e prazos prometidos.",
	PersonaProduction: "Você atende a equipe de produção. Priorize parâmetros " +
		"de processo de extrusão, quantidades, capacidade e instruções " +
		"operacionais.",
	PersonaTooling: "Você atende a ferramentaria. Priorize o estado das " +
		"matrizes: eficiência, vida útil restante, capacidade e necessidade " +
		"de manutenção.",
}

// SystemPrompt returns the full system prompt for a persona.
func SystemPrompt(p Persona) string {
	role, ok := systemPrompts[p]
	if !ok {
		role = systemPrompts[DefaultPersona]
	}
	return basePrompt + "\n\n" + role
}
