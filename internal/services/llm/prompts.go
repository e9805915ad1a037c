package llm

import (
	"fmt"
	"strings"
)

const creatorSystemPrompt = "You are a content strategist for short-form and long-form video creators. " +
	"Answer with practical, specific suggestions grounded in current platform conventions."

func SystemPrompt() string {
	return creatorSystemPrompt
}

// IdeationPrompt asks for a JSON array so the ideas service can parse titles,
// angles and hooks out of the completion.
func IdeationPrompt(topic, platform string, count int) string {
	if count <= 0 || count > 10 {
		count = 5
	}
	if platform == "" {
		platform = "youtube"
	}

	return fmt.Sprintf(`Generate %d content ideas for a %s creator about: %s

Respond with a JSON array only, no prose. Each element:
{"title": "...", "angle": "...", "hook": "...", "tags": ["..."]}`, count, platform, strings.TrimSpace(topic))
}

func ScriptPrompt(title, platform, tone string) string {
	if platform == "" {
		platform = "youtube"
	}
	if tone == "" {
		tone = "conversational"
	}

	return fmt.Sprintf(`Write a %s video script titled %q in a %s tone.

Respond with a JSON object only, no prose:
{"outline": "...", "body": "..."}
The body should include a hook, main sections and a call to action.`, platform, strings.TrimSpace(title), tone)
}

func ChannelAnalysisPrompt(channelRef, focus string) string {
	prompt := fmt.Sprintf(`Analyse the public content strategy of the channel %q.

Respond with a JSON object only, no prose:
{"summary": "...", "strengths": ["..."], "gaps": ["..."]}`, strings.TrimSpace(channelRef))

	if strings.TrimSpace(focus) != "" {
		prompt += fmt.Sprintf("\nFocus the analysis on: %s", strings.TrimSpace(focus))
	}
	return prompt
}

func TrendSearchPrompt(query, platform string) string {
	if platform == "" {
		platform = "youtube"
	}

	return fmt.Sprintf(`A %s creator wants trend and keyword insight for the query: %s

Summarise what is currently working for this topic: popular angles, title patterns and audience questions. Keep it under 300 words.`, platform, strings.TrimSpace(query))
}
