package survey

import (
	"fmt"
	"strings"
)

// Picker is the random source used for coaching lines. *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

var (
	earlyLines = []string{
		"That's a great start. Each answer is a building block for your unique fitness profile.",
		"Perfect, this is exactly the kind of information I need to start tailoring your plan.",
		"Excellent! Let's keep that momentum going. The more I learn, the more personalized your results will be.",
		"Great start! Every detail helps me understand you better, which means a better plan.",
	}
	transitionLines = []string{
		"Great, let's move on.",
		"Perfect. What's next?",
		"Got it. Now for this one...",
		"Okay, next question for you.",
		"This is helpful information. It's all going into your profile.",
		"You're doing great. Keep it up!",
		"Excellent. Thanks for sharing.",
		"Making progress! Here's the next question.",
		"Got it. This helps me understand your lifestyle.",
		"Thanks for sharing. This is crucial for tailoring your plan.",
	}
	midpointLines = []string{
		"Awesome, we're about halfway through! The insights we're gathering will make your final report incredibly valuable.",
		"Keep up the great work! You've crossed the halfway mark.",
		"You're making fantastic progress. This is where we start turning data into your personalized strategy.",
		"Halfway there! The more I learn, the more customized your plan will be.",
	}
	finalStretchLines = []string{
		"Almost there! We're on the home stretch now. Your personalized report is just around the corner!",
		"Just a couple more questions left. I'm getting ready to build your custom workout and nutrition guide.",
		"Incredible focus! We're so close to unlocking your complete fitness roadmap.",
		"The finish line is in sight! These last few details will put the finishing touches on your plan.",
	}
	finalLines = []string{
		"Alright, this is the final question. I'm ready to crunch the numbers and generate your report right after this.",
		"Here we are, the last question! Answer this, and I'll have everything I need to build your roadmap.",
		"Last one! All your hard work is about to pay off.",
	}
)

// Dialogue returns the coaching line spoken before step idx.
func (e *Engine) Dialogue(p Picker, idx int, name string) (string, error) {
	step, err := e.Step(idx)
	if err != nil {
		return "", err
	}
	question := strings.TrimSpace(step.Question + " " + step.Subtitle)
	total := len(e.steps)

	var lead string
	switch {
	case idx == 0:
		if name = strings.TrimSpace(name); name == "" {
			name = "there"
		}
		lead = fmt.Sprintf("Welcome, %s! I'm your AI coach and I'm excited to build your personalized plan. Let's get started with the first question.", name)
	case idx == total-1:
		lead = pick(p, finalLines)
	case idx == total/2:
		lead = pick(p, midpointLines)
	case idx == total*4/5:
		lead = pick(p, finalStretchLines)
	case idx == 3 || idx == total/5:
		lead = pick(p, earlyLines)
	default:
		lead = pick(p, transitionLines)
	}
	return lead + " ... " + question, nil
}

func pick(p Picker, lines []string) string {
	return lines[p.IntN(len(lines))]
}
