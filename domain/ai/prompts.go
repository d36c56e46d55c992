package ai

import (
	"embed"
	"fmt"
	"strings"

	"github.com/aymerick/raymond"
)

//go:embed prompts/*.hbs
var promptFS embed.FS

// Prompt template names.
const (
	promptSummarize  = "summarize"
	promptCompose    = "compose"
	promptCategorize = "categorize"
)

// categoryChoices are the labels offered to the model by the categorize
// prompt.
var categoryChoices = []string{
	"Work", "Personal", "Finance", "Travel", "Shopping",
	"Social", "Newsletters", "Promotions", "Updates", "Important",
}

var prompts = mustLoadPrompts(promptSummarize, promptCompose, promptCategorize)

func mustLoadPrompts(names ...string) map[string]*raymond.Template {
	out := make(map[string]*raymond.Template, len(names))
	for _, name := range names {
		content, err := promptFS.ReadFile("prompts/" + name + ".hbs")
		if err != nil {
			panic(fmt.Sprintf("prompt %s: %v", name, err))
		}
		out[name] = raymond.MustParse(string(content))
	}
	return out
}

// renderPrompt executes the named template with ctx.
func renderPrompt(name string, ctx map[string]any) (string, error) {
	tmpl, ok := prompts[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	out, err := tmpl.Exec(ctx)
	if err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(out), nil
}
