package script

import (
	"fmt"
	"strings"

	"podcastgen/internal/domain"
)

const systemPrompt = `You are a podcast script writer. Write a 3-5 minute conversational
podcast between two hosts:
- Alex: curious, asks good questions, uses analogies
- Sam: the expert, explains things clearly, occasionally funny

Rules:
- Make it feel natural, not like a lecture
- Include a short intro and sign-off
- Keep it to 8-12 exchanges total
- Format output as a JSON array:
  [{"speaker": "Alex", "text": "..."}, {"speaker": "Sam", "text": "..."}, ...]
- Return ONLY the JSON array, no other text.`

var toneGuidance = map[domain.Tone]string{
	domain.ToneCasual:   "Relaxed and friendly, like two friends chatting over coffee.",
	domain.ToneAcademic: "Precise and well-sourced, like a university lecture made approachable.",
	domain.ToneComedic:  "Playful with jokes and banter, without losing the facts.",
}

func buildUserPrompt(topic, brief string, tone domain.Tone) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Topic: %s\n", topic)
	fmt.Fprintf(sb, "Tone: %s\n", tone)
	if guidance, ok := toneGuidance[tone]; ok {
		fmt.Fprintf(sb, "Tone guidance: %s\n", guidance)
	}
	sb.WriteString("Research Brief:\n")
	sb.WriteString(brief)
	sb.WriteString("\n\nGenerate the podcast script now as a JSON array.")
	return sb.String()
}
