package script

import (
	"fmt"

	"podcastgen/internal/domain"
)

// Placeholder returns the fixed ten-line conversation used whenever the
// model cannot produce a script.
func Placeholder(topic string) []domain.DialogueLine {
	a, b := domain.SpeakerA, domain.SpeakerB
	return []domain.DialogueLine{
		{Speaker: a, Text: fmt.Sprintf("Hey Sam, today we're diving into %s. I've been really curious about this!", topic)},
		{Speaker: b, Text: fmt.Sprintf("Yeah, %s is fascinating. Let me break it down for you.", topic)},
		{Speaker: a, Text: "So what's the most surprising thing people don't know about this?"},
		{Speaker: b, Text: fmt.Sprintf("Well, the thing about %s that most people miss is how interconnected it is with everyday life. It's not just some abstract concept.", topic)},
		{Speaker: a, Text: "That's a great point. Can you give me an example?"},
		{Speaker: b, Text: "Sure! Think of it this way — it's like how you don't notice gravity until you trip. The effects are everywhere once you start looking."},
		{Speaker: a, Text: "Ha! I love that analogy. What should our listeners take away from this?"},
		{Speaker: b, Text: fmt.Sprintf("I'd say the key takeaway is that %s matters more than most people realize. Start paying attention and you'll see it everywhere.", topic)},
		{Speaker: a, Text: "Awesome. Thanks for breaking that down, Sam. Until next time, folks!"},
		{Speaker: b, Text: "See you next episode!"},
	}
}
