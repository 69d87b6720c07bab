package llm

import (
	"strings"

	"github.com/ByteBell/pyano/internal/pyanoerr"
	"github.com/ByteBell/pyano/internal/registry"
)

// renderPrompt substitutes {system_prompt} and {user_prompt} into tmpl.
// Identifier match is exact; a template missing either placeholder is a
// fatal configuration error (spec.md §4.8).
func renderPrompt(tmpl registry.PromptTemplate, systemPrompt, userPrompt string) (string, error) {
	for _, key := range []string{"system_prompt", "user_prompt"} {
		if !strings.Contains(tmpl.Template, "{"+key+"}") {
			return "", pyanoerr.NewConfigError("prompt template missing required placeholder {%s}", key)
		}
	}

	out := strings.NewReplacer(
		"{system_prompt}", systemPrompt,
		"{user_prompt}", userPrompt,
	).Replace(tmpl.Template)
	return out, nil
}
