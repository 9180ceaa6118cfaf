package services

import (
	"fmt"
	"math/rand"
	"strings"

	"speakcoach/models"
)

// PhraseHistory tracks the last phrase chosen per category for one session,
// so templated utterances do not repeat back to back. It is session state,
// passed in explicitly; sessions never share it.
type PhraseHistory map[string]string

// Pick selects one option at random, avoiding the previous choice for the
// category whenever a different option exists.
func (h PhraseHistory) Pick(rng *rand.Rand, category string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	candidates := options
	if previous, ok := h[category]; ok {
		fresh := make([]string, 0, len(options))
		for _, o := range options {
			if o != previous {
				fresh = append(fresh, o)
			}
		}
		if len(fresh) > 0 {
			candidates = fresh
		}
	}
	choice := candidates[rng.Intn(len(candidates))]
	h[category] = choice
	return choice
}

// fallbackOpening is the deterministic opening used when remote generation
// fails. It introduces all three participants and greets the user by name
// when one was given.
func fallbackOpening(topic, userName string, participants []models.Participant) string {
	var names []string
	for _, p := range participants {
		names = append(names, p.Name)
	}
	greeting := "Welcome to our discussion!"
	if userName != "" {
		greeting = fmt.Sprintf("Welcome, %s!", userName)
	}
	return fmt.Sprintf("%s I'm %s, and joining us today are %s and %s. Our topic is: %s. Let's hear what you think first!",
		greeting, names[0], names[1], names[2], topic)
}

func fallbackSupportResponse(name string) string {
	return fmt.Sprintf("That's a really good point, and I agree with you. I'd add that thinking about it from everyday experience supports what you said. (%s)", name)
}

func fallbackOpposeResponse(name string) string {
	return fmt.Sprintf("I see what you mean, but I respectfully disagree. There's another side to this that's worth considering too. (%s)", name)
}

func fallbackMediatorResponse(name string) string {
	return fmt.Sprintf("You both raise interesting points. Maybe the truth lies somewhere in the middle, and it depends on the situation. (%s)", name)
}

var closingTemplates = []string{
	"That was a wonderful discussion, %s! Everyone shared thoughtful ideas today. Thanks for joining us!",
	"What a great conversation, %s! You made some really interesting points. See you next time!",
	"Thank you for such an engaging discussion, %s! You expressed yourself really well today.",
	"Brilliant discussion, %s! I enjoyed hearing everyone's perspective. Well done!",
}

// pickClosing chooses a closing line from the template pool, personalised
// with the user's name when present.
func pickClosing(rng *rand.Rand, history PhraseHistory, userName string) string {
	template := history.Pick(rng, "closing", closingTemplates)
	name := userName
	if name == "" {
		name = "everyone"
	}
	return strings.Replace(template, "%s", name, 1)
}
