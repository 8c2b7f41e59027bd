// Package messages supplies the canned texts attached to weekly penalties
// and "workout missed" nudges. Selection is behind the Provider interface so
// job logic never touches the corpora directly and tests don't depend on
// randomness.
package messages

import "math/rand/v2"

// Category names one of the fixed message corpora.
type Category int

const (
	// CategoryPenalty is the roast attached to a penalty record.
	CategoryPenalty Category = iota

	// CategoryNudge is the gentler "workout missed" notification body.
	CategoryNudge
)

// Provider picks one message from a category's corpus.
type Provider interface {
	Pick(c Category) string
}

// NewProvider returns the default Provider, selecting uniformly at random.
// Safe for concurrent use.
func NewProvider() Provider {
	return randomProvider{}
}

type randomProvider struct{}

func (randomProvider) Pick(c Category) string {
	corpus := Corpus(c)
	return corpus[rand.IntN(len(corpus))]
}

// Corpus returns the full message list for a category. Exposed so tests can
// assert that a picked message came from the right corpus.
func Corpus(c Category) []string {
	if c == CategoryNudge {
		return nudgeMessages
	}
	return penaltyMessages
}

var penaltyMessages = []string{
	"🏋️‍♂️ Looks like someone skipped leg day... and every other day this week! Your couch is getting more exercise than you are.",
	"💪 Your gym membership is crying from neglect. Maybe it's time to actually use it instead of just paying for it?",
	"🚴‍♀️ The only thing that's been consistently working out is your excuse generator. Time to reboot that system!",
	"🏃‍♂️ Your fitness tracker is so confused it thinks you're a statue. Let's prove it wrong next week!",
	"🥗 Your vegetables are getting lonely in the fridge. They miss being part of a healthy lifestyle!",
	"💀 Your workout clothes are staging an intervention. They want to see the outside world again!",
	"🎯 Your goals are calling from a land far, far away... where people actually work out regularly.",
	"⚡ Your energy levels are so low they're considering early retirement. Time for a comeback!",
	"🌟 Your motivation is MIA (Missing In Action). Time to send out a search party!",
	"🔥 Your fire is so dim it's practically a candle. Let's turn it back into a bonfire!",
}

var nudgeMessages = []string{
	"💪 Hey! We noticed you missed today's workout. Your group is counting on you!",
	"🏋️‍♂️ Your workout buddy is waiting for you. Don't let them down!",
	"🚴‍♀️ Time to get back on track! Your fitness journey is waiting.",
	"🏃‍♂️ Missing workouts is like missing puzzle pieces - you need all of them to complete the picture!",
	"💯 Your consistency is what makes the group strong. Let's keep it up!",
}
