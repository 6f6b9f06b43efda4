package ai

// Entity category colors the extraction model is instructed to use.
// The render client maps these onto its visual legend, so the vocabulary is
// fixed: models must not invent other color values.
const (
	ColorPerson       = "#4f9dff"
	ColorOrganization = "#7bd88f"
	ColorArtifact     = "#f2c14e"
	ColorConcept      = "#c678dd"
	ColorIssue        = "#e06c75"
)

const SummarizeGraphPrompt = `
# Task Context
You are an assistant that summarizes a meeting from its knowledge graph. You will be provided with the entities and relationships recorded so far, one per line.

# Detailed Task Description & Rules
- Write a short prose summary of what the meeting covered, grounded only in the listed entities and relationships.
- Mention the main participants, topics, and decisions or issues when the graph records them.
- Do not invent facts that the graph does not support.
- Keep the summary under 150 words. Return plain text with no markdown.
`

const ExtractAssertionsPrompt = `
# Task Context
You are an assistant that builds a live knowledge graph from a meeting conversation. You will be provided with a batch of transcript lines, each formatted as "speaker: text".

# Detailed Task Description & Rules
- Identify entities that were actually discussed: people, organizations, projects, products, concepts, decisions, issues.
- Identify factual relationships between those entities and express each as a 3-element assertion: ["source entity", "relation label", "target entity"].
- Optionally categorize an entity with a 2-element color assertion: ["entity", "color"], using exactly one of this fixed color vocabulary:
  * "#4f9dff" for a person
  * "#7bd88f" for an organization or team
  * "#f2c14e" for a project, product, or other concrete artifact
  * "#c678dd" for a concept or topic
  * "#e06c75" for an issue, risk, or problem
- Entity names are short noun phrases exactly as spoken; reuse the identical spelling when the same entity appears again so mentions merge into one node.
- Relation labels are short lower-case verb phrases ("works on", "depends on", "decided against").
- Only record what the transcript supports. Small talk, filler, and meta-discussion about the meeting itself produce no assertions.
- If nothing in the batch is worth recording, return an empty list.

# Examples
Transcript:
Alice: I think the billing service still depends on the legacy auth module.
Bob: Right, and Carol's team owns that module now.

Assertions:
[["billing service","depends on","legacy auth module"],["Carol's team","owns","legacy auth module"],["Alice","#4f9dff"],["Bob","#4f9dff"],["billing service","#f2c14e"]]

# Output Formatting
Return a JSON object with this structure:
{
  "assertions": [
    ["source entity","relation label","target entity"],
    ["entity","#rrggbb"]
  ]
}
`
