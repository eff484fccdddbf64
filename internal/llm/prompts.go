package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/free.txt
	promptFree string
	//go:embed prompts/pro.txt
	promptPro string
	//go:embed prompts/improve.txt
	promptImprove string
)

// BuildPrompt renders the question prompt; pro adds the insight and skill gap blocks.
func BuildPrompt(pro bool, jobDescription, resume string) string {
	template := promptFree
	if pro {
		template = promptPro
	}
	return render(template, jobDescription, resume)
}

// BuildImprovePrompt renders the resume improvement prompt for job seekers.
func BuildImprovePrompt(jobDescription, resume string) string {
	return render(promptImprove, jobDescription, resume)
}

func render(template, jobDescription, resume string) string {
	replacer := strings.NewReplacer(
		"{{JOB_DESCRIPTION}}", strings.TrimSpace(jobDescription),
		"{{RESUME}}", strings.TrimSpace(resume),
	)
	return replacer.Replace(template)
}
