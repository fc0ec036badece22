package prompt

import "github.com/aristath/zappy/internal/agent"

// Template is one output-structure option.
type Template struct {
	ID          agent.Structure
	Name        string
	Description string
	Body        string
}

// schemaV12 is the Zappyhealth Schema v1.2 JSON layout.
const schemaV12 = `{
  "seo_title": "",
  "meta_description": "",
  "introduction": "",

  "tldr": [
    "",
    "",
    ""
  ],

  "overview": "",
  "mechanism": "",

  "evidence_summary": "",

  "common_concerns": [
    { "question": "", "answer": "" },
    { "question": "", "answer": "" },
    { "question": "", "answer": "" }
  ],

  "supportive_actions": [
    "",
    ""
  ],

  "provider_guidance": "",

  "topic_specific_section": {
    "title": "",
    "content": ""
  },

  "key_takeaway": "",

  "faq": [
    { "question": "", "answer": "" },
    { "question": "", "answer": "" },
    { "question": "", "answer": "" }
  ],

  "disclaimer": "This content is for educational purposes only and does not replace medical advice. Always consult your healthcare provider for personalized guidance."
}`

// Templates lists every structure; the first entry is the fallback.
var Templates = []Template{
	{
		ID:          agent.StructureSchemaV12,
		Name:        "Zappyhealth Schema v1.2",
		Description: "Structured JSON schema with TL;DR, mechanism, evidence and FAQ blocks.",
		Body:        schemaV12,
	},
	{
		ID:          agent.StructureClinicalAuthority,
		Name:        "Clinical Authority",
		Description: "Physician-voice explainer anchored on guidelines and evidence grades.",
		Body: `# <Title>
## Clinical Summary (3-5 bullets)
## What the Condition Is (and Is Not)
## Mechanism
## Evidence Review (grade each claim)
## Clinical Decision Points
## Red Flags and When to Escalate
## FAQ
## Disclaimer`,
	},
	{
		ID:          agent.StructureListicle,
		Name:        "Listicle",
		Description: "Numbered list of scannable, evidence-backed points.",
		Body: `# <Number> <Topic> Facts You Should Know
## Introduction (2-3 sentences)
## TL;DR
## 1. <Point> (claim, evidence, what to do)
## 2. <Point>
## ... (7-10 points total)
## Bottom Line
## Disclaimer`,
	},
	{
		ID:          agent.StructureHowToGuide,
		Name:        "How-To Guide",
		Description: "Step-by-step actionable guide with safety checkpoints.",
		Body: `# How to <Goal>
## Who This Guide Is For
## TL;DR
## Before You Start (contraindications, what you need)
## Step 1 ... Step N (each with expected timeline)
## Common Mistakes
## When to Stop and Call a Provider
## FAQ
## Disclaimer`,
	},
	{
		ID:          agent.StructureQAFormat,
		Name:        "Q&A Format",
		Description: "Question-led article built from real search questions.",
		Body: `# <Topic>: Your Questions Answered
## Short Answer (40-60 words)
## TL;DR
## Q: <Question 1>
A: Yes/No/It depends first sentence, then explanation.
## Q: <Question 2> ... (6-10 questions)
## Key Takeaway
## Disclaimer`,
	},
	{
		ID:          agent.StructureComparison,
		Name:        "Comparison",
		Description: "Side-by-side evaluation of two or more options.",
		Body: `# <Option A> vs <Option B>
## TL;DR
## At a Glance (comparison table: mechanism, onset, evidence grade, risks, cost)
## How <Option A> Works
## How <Option B> Works
## Who Should Choose Which
## Safety Differences
## FAQ
## Disclaimer`,
	},
	{
		ID:          agent.StructureCaseStudy,
		Name:        "Case Study",
		Description: "Composite patient scenario walked through the clinical reasoning.",
		Body: `# <Topic>: A Case Study
## The Scenario (composite, de-identified)
## TL;DR
## Presenting Symptoms
## Clinical Reasoning
## Management and Timeline
## Outcome and What It Teaches
## FAQ
## Disclaimer`,
	},
	{
		ID:          agent.StructureMythBusting,
		Name:        "Myth Busting",
		Description: "Common misconceptions corrected with evidence.",
		Body: `# <Number> Myths About <Topic>
## TL;DR
## Myth 1: <Statement>
Fact: <Correction with evidence grade>
## Myth 2 ... (5-8 myths)
## What the Evidence Actually Supports
## Disclaimer`,
	},
	{
		ID:          agent.StructureArchonManuscript,
		Name:        "The Archon Manuscript",
		Description: "Exhaustive long-form manuscript following every numbered section.",
		Body: `1. Title (H1) and meta description
2. Featured snippet answer (40-60 words)
3. TL;DR (5 bullets)
4. Definition split box (X is not Y)
5. Mechanism of action
6. Evidence grading table
7. Time-to-effect and clearance timeline
8. Decision support (do, do not, escalate)
9. Red flags and contraindications
10. Key facts box (units, ranges, thresholds)
11. FAQ (8 questions)
12. References (named sources only)
13. Disclaimer`,
	},
}

// Lookup returns the template with the given id, or the first template.
func Lookup(id agent.Structure) Template {
	for _, t := range Templates {
		if t.ID == id {
			return t
		}
	}
	return Templates[0]
}
