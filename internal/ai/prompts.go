package ai

import (
	"fmt"
	"strings"
)

// Band describes the subject entity the relevance filter and rewriter are
// tuned to. It is configuration data, not hardcoded editorial knowledge.
type Band struct {
	Name          string
	Members       []string
	FormerMembers []string
	SideProjects  []string
}

// BuildRelevancePrompt asks for a strict JSON yes/no on whether an article
// concerns the band.
func BuildRelevancePrompt(band Band, title, body string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are the news editor of a %s fan site. Decide whether the following article is about the band or not.\n\n", band.Name)

	fmt.Fprintf(&sb, "An article IS relevant when it concerns:\n")
	fmt.Fprintf(&sb, "- the band %s itself (releases, tours, interviews, lineup news)\n", band.Name)
	if len(band.Members) > 0 {
		fmt.Fprintf(&sb, "- its current members: %s\n", strings.Join(band.Members, ", "))
	}
	if len(band.FormerMembers) > 0 {
		fmt.Fprintf(&sb, "- historically significant former members: %s\n", strings.Join(band.FormerMembers, ", "))
	}
	if len(band.SideProjects) > 0 {
		fmt.Fprintf(&sb, "- directly connected side projects and collaborations: %s\n", strings.Join(band.SideProjects, ", "))
	}

	sb.WriteString(`
An article is NOT relevant when:
- the band or a member is only mentioned in passing
- the article is primarily about an unrelated act, even if it quotes or references the band

`)

	fmt.Fprintf(&sb, "Title: %s\n\nArticle text:\n%s\n\n", title, body)

	sb.WriteString(`Respond with ONLY a JSON object, no other text:
{"is_relevant": true or false, "reason": "one short sentence"}`)

	return sb.String()
}

// BuildRewritePrompt asks for the full bilingual rewrite of an accepted
// article. The response must be a JSON object with exactly six string
// fields; anything else fails validation downstream.
func BuildRewritePrompt(band Band, title, body, sourceURL string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are a music journalist writing for a bilingual (English/Spanish) %s fan site. Rewrite the following source article as an original news piece in BOTH languages.

Source title: %s
Source URL: %s

Source text:
%s

`, band.Name, title, sourceURL, body)

	sb.WriteString(`WRITING RULES (apply to both languages):
- Inverted pyramid structure: a lead of roughly 50-80 words answering who/what/when/where, a body of roughly 200-350 words with details, and a closing context section of roughly 100-170 words with background.
- Preserve every direct quotation literally, in its original language, attributed to its speaker.
- Use full proper names on first mention; short forms afterwards.
- Separate paragraphs with a blank line (two newline characters).
- Do not invent facts, dates, or quotes that are not in the source text.

OUTPUT FORMAT:
Return ONLY a JSON object with exactly these six string fields and no other text, markdown, or explanation:

{
  "title_en": "headline in English, maximum 80 characters",
  "title_es": "headline in Spanish, maximum 80 characters",
  "description_en": "full article in English following the writing rules",
  "description_es": "full article in Spanish following the writing rules",
  "image_caption_en": "short image caption in English, maximum 60 characters",
  "image_caption_es": "short image caption in Spanish, maximum 60 characters"
}`)

	return sb.String()
}

// CleanJSONResponse strips markdown code fences from a model reply.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	if strings.HasSuffix(response, "```") {
		response = strings.TrimSuffix(response, "```")
	}
	return strings.TrimSpace(response)
}

// ExtractJSON pulls a JSON object or array out of a potentially messy model
// reply: as-is, fence-stripped, or delimiter-bounded, in that order.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if looksLikeJSON(raw) {
		return raw
	}

	cleaned := CleanJSONResponse(raw)
	if looksLikeJSON(cleaned) {
		return cleaned
	}

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			candidate := raw[start : end+1]
			if looksLikeJSON(candidate) {
				return candidate
			}
		}
	}

	return cleaned
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return (strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")) ||
		(strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"))
}
