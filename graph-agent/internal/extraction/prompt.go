package extraction

import "github.com/tmc/langchaingo/prompts"

const extractionTemplate = `
You are an expert at extracting knowledge from text.
Extract entities and relationships from the following text.
Return the result as a JSON object with a list of "triplets".
Each triplet should have:
- "source": The source entity
- "target": The target entity
- "relation": The relationship between them

Example:
Text: "Apple released the iPhone in 2007."
Output: {
    "triplets": [
        {"source": "Apple", "target": "iPhone", "relation": "released"},
        {"source": "iPhone", "target": "2007", "relation": "released_in"}
    ]
}

Text: {{.text}}
`

func newPrompt() prompts.PromptTemplate {
	return prompts.NewPromptTemplate(extractionTemplate, []string{"text"})
}
