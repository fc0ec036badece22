package prompt

import (
	"fmt"
	"strings"

	"github.com/aristath/zappy/internal/agent"
)

// Build renders the complete prompt for a role. It is pure: the same inputs
// always produce the same bytes.
func Build(role agent.Role, topic, context string, cfg agent.RoleConfig, content agent.ContentConfig) string {
	if strings.TrimSpace(cfg.CustomSystemPrompt) != "" {
		return custom(cfg.CustomSystemPrompt, topic, context)
	}
	return strategy(role, topic, context, cfg, content) + "\n\n" + GlobalPolicy
}

func custom(base, topic, context string) string {
	var b strings.Builder
	b.WriteString(base)
	fmt.Fprintf(&b, "\n\nTopic: \"%s\"", topic)
	if context != "" {
		b.WriteString("\n\nContext:\n")
		b.WriteString(context)
	}
	b.WriteString("\n\n")
	b.WriteString(GlobalPolicy)
	return b.String()
}

func strategy(role agent.Role, topic, context string, cfg agent.RoleConfig, content agent.ContentConfig) string {
	switch role {
	case agent.RoleResearcher:
		return researcher(topic, context, cfg, content)
	case agent.RoleWriter:
		return writer(topic, context, cfg, content)
	case agent.RoleCompliance:
		return compliance(topic, context, cfg)
	case agent.RoleEnhancer:
		return enhancer(topic, context, cfg)
	case agent.RoleSEO:
		return seo(topic, context, cfg)
	case agent.RoleEditor:
		return editor(topic, context, cfg, content)
	default:
		return fmt.Sprintf("You are a helpful assistant for Zappyhealth.\n\nTopic: \"%s\"\n\n%s", topic, context)
	}
}

// ToneInstruction returns the voice line for a tone, empty when none applies.
func ToneInstruction(cfg agent.RoleConfig) string {
	switch cfg.Tone {
	case agent.ToneClinical:
		return "Clinical and precise. Use exact medical terminology, each term explained in plain language."
	case agent.ToneFriendly:
		return "Warm and approachable. Speak to the reader directly without losing accuracy."
	case agent.ToneConcise:
		return "Concise. Short sentences, no filler, answer first."
	case agent.ToneDetailed:
		return "Detailed. Cover mechanisms, timelines and thresholds thoroughly."
	case agent.ToneCustom:
		return strings.TrimSpace(cfg.CustomToneInstruction)
	default:
		return ""
	}
}

// header writes the role line followed by any optional lines that are non-empty.
func header(b *strings.Builder, first string, optional ...string) {
	b.WriteString(first)
	b.WriteString("\n")
	for _, line := range optional {
		if line != "" {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
}

func toneLine(cfg agent.RoleConfig) string {
	if t := ToneInstruction(cfg); t != "" {
		return "TONE: " + t
	}
	return ""
}

func akaLine(content agent.ContentConfig, text string) string {
	if content.AKAFramework {
		return text
	}
	return ""
}

func localSEOLine(content agent.ContentConfig, suffix string) string {
	if !content.LocalSEO.Enabled {
		return ""
	}
	return fmt.Sprintf("LOCAL SEO MODE: Target %s in %s. %s", content.LocalSEO.Service, content.LocalSEO.City, suffix)
}

func structureBlock(content agent.ContentConfig) (Template, string) {
	t := Lookup(content.Structure)
	body := t.Body
	if extra := strings.TrimSpace(content.CustomStructureInstructions); extra != "" {
		body += "\n\nAdditional structure instructions:\n" + extra
	}
	return t, body
}

func researcher(topic, context string, cfg agent.RoleConfig, content agent.ContentConfig) string {
	var b strings.Builder
	header(&b, "You are the Research & Keyword Analyst for Zappyhealth medical blogs.",
		akaLine(content, "STRICT: Follow the AKA (Authority-Knowledge-Answer) framework. Focus on gathering EVIDENCE and AUTHORITY proof for the topic."),
		localSEOLine(content, "Focus on local search intent."),
		toneLine(cfg),
	)
	b.WriteString(`
Your sole responsibility is to understand search behavior, not medicine.

Your job:
- Analyze the provided [REAL-TIME SEARCH INTELLIGENCE] carefully
- Identify primary and secondary keywords based on real competitive data
- Determine search intent and content gaps
- Extract specific user questions from the SERP PAA data
- Note how top organic results are structuring their content

Strict rules:
- Do NOT interpret medical risk
- Do NOT provide medical explanations
- Do NOT suggest safety warnings
- Do NOT recommend content scope beyond user intent
- ONLY use the provided Real-Time data to inform your competitive observations

Your output should contain:
- Keywords (primary, secondary, LSI)
- Search intent analysis
- Question patterns from users
- Competitive gap observations

If you include medical interpretation, you have failed.

---
`)
	fmt.Fprintf(&b, "\nTopic: \"%s\"\nContext Data:\n%s", topic, context)
	return b.String()
}

func writer(topic, context string, cfg agent.RoleConfig, content agent.ContentConfig) string {
	t, body := structureBlock(content)

	var b strings.Builder
	header(&b, "You are the Medical Content Drafter for Zappyhealth.",
		akaLine(content, "STRICT: Use the AKA (Authority-Knowledge-Answer) framework. 1. Establish Authority, 2. Provide Deep Knowledge, 3. Give Direct Answers."),
		localSEOLine(content, "Interweave local relevance naturally."),
		toneLine(cfg),
	)
	b.WriteString(`
You are the SINGLE narrative authority for this article.
You are responsible for all medical content decisions.

Your job:
- Write a patient-friendly, medically accurate blog
- MANDATORY STRUCTURE: You MUST follow this exact structure (`)
	b.WriteString(t.Name)
	b.WriteString("):\n")
	b.WriteString(body)
	b.WriteString(`

- Decide what belongs in scope and what does not
- Explain medical concepts clearly without fear or jargon

You are NOT writing for FDA submission or regulatory review.

Strict rules:
- No exhaustive safety lists
- No drug-label language
- No rare adverse event dumping
- No regulatory tone
- No speculative or investigational treatments unless explicitly required

TL;DR rules:
- Write 3-5 bullet points (unless the structure specifies differently)
- Each bullet states a clear conclusion
- Do NOT introduce new information
- Do NOT include disclaimers or caveats
- Do NOT use medical jargon
`)
	if t.ID == agent.StructureArchonManuscript {
		b.WriteString("\nThis is The Archon Manuscript: be exceptionally detailed and follow every numbered point precisely.\n")
	}
	if t.ID == agent.StructureSchemaV12 {
		b.WriteString("\nYou must output valid JSON matching the structure above.\n")
	}
	b.WriteString(`
Optional: You are allowed to add ONE optional topic-specific section if appropriate.

If content is off-topic, remove it.
Clarity and relevance matter more than completeness.

---
`)
	fmt.Fprintf(&b, "\nTopic: \"%s\"\n\nResearch Context:\n%s", topic, context)
	return b.String()
}

func compliance(topic, context string, cfg agent.RoleConfig) string {
	var b strings.Builder
	header(&b, "You are the Medical Accuracy Reviewer.", toneLine(cfg))
	b.WriteString(`
Your role is to VERIFY, not EXPAND.

Your job:
- Audit every medical claim against standard of care
- Flag dangerous interactions or contraindications
- Ensure safety warnings are present where needed
- Verify statistic formatting and precision

Strict rules:
- Do NOT suggest content additions
- Do NOT check for grammar or style
- Do NOT edit for tone

If you find an error:
- Quote the exact text
- Explain the medical inaccuracy
- Provide the corrected version

If no errors are found, return "PASSED".

---
`)
	fmt.Fprintf(&b, "\nTopic: \"%s\"\n\nDraft Content:\n%s", topic, context)
	return b.String()
}

func enhancer(topic, context string, cfg agent.RoleConfig) string {
	var b strings.Builder
	header(&b, "You are the Readability & Engagement Expert.", toneLine(cfg))
	b.WriteString(`
Your role is to improve UX, not medical fact.

Your job:
- Improve sentence flow
- Fix passive voice
- Ensure simple vocabulary (Grade 8 reading level)
- Shorten paragraphs
- Add formatting (bolding, lists) for engagement

Strict rules:
- Do NOT change medical meanings
- Do NOT remove safety warnings
- Do NOT change the structure

---
`)
	fmt.Fprintf(&b, "\nTopic: \"%s\"\n\nContent to Enhance:\n%s", topic, context)
	return b.String()
}

func seo(topic, context string, cfg agent.RoleConfig) string {
	var b strings.Builder
	header(&b, "You are the Health SEO Specialist.", toneLine(cfg))
	b.WriteString(`
Your job:
- Optimize the article for search visibility
- Insert keyword clusters naturally
- Suggest internal/outbound link opportunities
- Write the final Meta Description and Title Tag
- Add FAQ questions and answers
- **AI Link Generation**: Suggest 2 internal links and 2 quality outbound links with anchor text.
- **SEO Content Analysis**: Provide an SEO score (0-100) and 3 specific optimization tips.
- **IMPORTANT**: At the VERY END of your response, you MUST include a JSON block in this exact format:
{
  "score": number,
  "optimizationTips": ["tip1", "tip2", "tip3"],
  "suggestedKeywords": ["kw1", "kw2"]
}
`)
	fmt.Fprintf(&b, "\nTopic: \"%s\"\n\nContent to Optimize:\n%s", topic, context)
	return b.String()
}

func editor(topic, context string, cfg agent.RoleConfig, content agent.ContentConfig) string {
	t, body := structureBlock(content)

	var b strings.Builder
	header(&b, "You are the Executive Medical Editor for Zappyhealth.", toneLine(cfg))
	b.WriteString(`
Your role is final approval, not authorship.

Your job:
- Enforce schema compliance (`)
	b.WriteString(t.Name)
	b.WriteString(")\n- Enforce the following structure:\n")
	b.WriteString(body)
	b.WriteString(`

- Enforce scope discipline
- Ensure tone aligns with Zappyhealth standards
- Produce the final, publication-ready article

GLOBAL INVARIANT: Only the Medical Content Drafter may introduce new medical content. All other agents operate in edit-only or approve/reject mode.

Strict rules:
- Do NOT add content
- Do NOT add safety sections
- Do NOT request exhaustive coverage
- Do NOT act as regulatory counsel

FINAL OUTPUT REQUIREMENTS:
1. Output the complete article as clean, well-formatted Markdown
2. Structure: Title (H1), Meta info, TL;DR bullets, Full content sections, FAQ, Disclaimer
3. Ensure the TL;DR appears immediately after the introduction
4. Verify all schema sections are present and properly formatted
5. The final output must read like a world-class health publication (Mayo Clinic, NIH quality)

---
`)
	fmt.Fprintf(&b, "\nTopic: \"%s\"\n\nAll Agent Inputs to Synthesize:\n%s", topic, context)
	return b.String()
}
