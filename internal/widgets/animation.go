package widgets

import (
	"context"
	"time"
)

var ExerciseEmojis = []string{
	"🏃‍♂️", "🏃‍♀️", "💪", "🏋️‍♂️", "🏋️‍♀️", "🤸‍♂️", "🤸‍♀️",
	"🚴‍♂️", "🚴‍♀️", "🏊‍♂️", "🏊‍♀️", "🤾‍♂️", "🤾‍♀️", "🏌️‍♂️",
	"🏌️‍♀️", "⛹️‍♂️", "⛹️‍♀️", "🤺", "🏇", "🧘‍♂️", "🧘‍♀️",
}

var Captions = []string{
	"💪 Flexing those muscles...",
	"🏃‍♂️ Running for you...",
	"🏋️‍♀️ Lifting your game...",
	"🤸‍♂️ Ready to move...",
	"🚴‍♀️ Pedaling for gains...",
	"🏊‍♂️ Diving into plans...",
	"🤾‍♀️ Planning your moves...",
	"🏌️‍♂️ Teeing up now...",
	"⛹️‍♀️ Bouncing ideas now...",
	"🏇 Galloping to goals...",
	"🧘‍♂️ Finding your zen...",
	"💪 Building your strength...",
	"🏃‍♀️ Sprinting to finish...",
	"🏋️‍♂️ Pumping your plan...",
	"🤸‍♀️ Flipping new moves...",
	"🚴‍♂️ Cycling best options...",
	"🏊‍♀️ Swimming in ideas...",
	"🤾‍♂️ Passing you plans...",
	"🏌️‍♀️ Swinging for goals...",
	"⛹️‍♂️ Jumping into action...",
	"🤺 Dueling with workouts...",
	"🏇 Racing to plan...",
	"🧘‍♀️ Meditating on fitness...",
}

const (
	DefaultEmojiInterval   = time.Second
	DefaultCaptionInterval = 2 * time.Second
)

type Frame struct {
	Emoji   string `json:"emoji"`
	Caption string `json:"caption"`
}

// Animation is the "working on it" indicator shown while a plan is generated.
// Emoji and caption rotate independently.
type Animation struct {
	emojiIdx        int
	captionIdx      int
	emojiInterval   time.Duration
	captionInterval time.Duration
}

func NewAnimation(emojiInterval, captionInterval time.Duration) *Animation {
	if emojiInterval <= 0 {
		emojiInterval = DefaultEmojiInterval
	}
	if captionInterval <= 0 {
		captionInterval = DefaultCaptionInterval
	}
	return &Animation{
		emojiInterval:   emojiInterval,
		captionInterval: captionInterval,
	}
}

func (a *Animation) EmojiInterval() time.Duration { return a.emojiInterval }
func (a *Animation) CaptionInterval() time.Duration { return a.captionInterval }

func (a *Animation) Frame() Frame {
	return Frame{
		Emoji:   ExerciseEmojis[a.emojiIdx],
		Caption: Captions[a.captionIdx],
	}
}

func (a *Animation) NextEmoji() Frame {
	a.emojiIdx = (a.emojiIdx + 1) % len(ExerciseEmojis)
	return a.Frame()
}

func (a *Animation) NextCaption() Frame {
	a.captionIdx = (a.captionIdx + 1) % len(Captions)
	return a.Frame()
}

// Reset goes back to the first emoji and caption.
func (a *Animation) Reset() {
	a.emojiIdx = 0
	a.captionIdx = 0
}

// Run emits the current frame, then a new frame on every tick, until ctx is done.
// Both tickers are stopped before Run returns.
func (a *Animation) Run(ctx context.Context, onFrame func(Frame)) {
	emojiTicker := time.NewTicker(a.emojiInterval)
	defer emojiTicker.Stop()
	captionTicker := time.NewTicker(a.captionInterval)
	defer captionTicker.Stop()

	onFrame(a.Frame())
	for {
		select {
		case <-ctx.Done():
			return
		case <-emojiTicker.C:
			onFrame(a.NextEmoji())
		case <-captionTicker.C:
			onFrame(a.NextCaption())
		}
	}
}
