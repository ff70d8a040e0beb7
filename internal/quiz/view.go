package quiz

import "category-quiz-service/internal/domain"

// Screen selects which presentation a client shows.
type Screen string

const (
	ScreenChooser  Screen = "chooser"
	ScreenLoading  Screen = "loading"
	ScreenQuestion Screen = "question"
	ScreenSummary  Screen = "summary"
)

// OptionView is one answer button.
type OptionView struct {
	Label    string `json:"label"`
	Text     string `json:"text"`
	Selected bool   `json:"selected,omitempty"`
	Correct  bool   `json:"correct,omitempty"`
	Wrong    bool   `json:"wrong,omitempty"`
}

// View is the client-facing rendering of a Snapshot.
type View struct {
	Screen     Screen            `json:"screen"`
	Categories []domain.Category `json:"categories,omitempty"`
	Category   domain.Category   `json:"category,omitempty"`
	Error      string            `json:"error,omitempty"`
	Position   int               `json:"position,omitempty"`
	Total      int               `json:"total,omitempty"`
	Prompt     string            `json:"prompt,omitempty"`
	Options    []OptionView      `json:"options,omitempty"`
	Locked     bool              `json:"locked,omitempty"`
	Score      int               `json:"score"`
	Celebrate  bool              `json:"celebrate,omitempty"`
	Submitted  bool              `json:"submitted,omitempty"`
}

// Render maps a snapshot to its view. The correct label is only exposed while revealing.
func Render(s Snapshot) View {
	switch s.State {
	case Loading:
		return View{Screen: ScreenLoading, Category: s.Category}
	case Active, Revealing:
		q, ok := s.Current()
		if !ok {
			return View{Screen: ScreenLoading, Category: s.Category}
		}
		v := View{
			Screen:   ScreenQuestion,
			Category: s.Category,
			Position: s.Index + 1,
			Total:    len(s.Questions),
			Prompt:   q.Prompt,
			Locked:   s.Reveal,
			Score:    s.Score,
		}
		for i, label := range domain.Labels {
			opt := OptionView{Label: label, Text: q.Options[i], Selected: s.Selected == label}
			if s.Reveal {
				opt.Correct = label == q.Correct
				opt.Wrong = opt.Selected && !opt.Correct
			}
			v.Options = append(v.Options, opt)
		}
		return v
	case Terminal:
		total := len(s.Questions)
		return View{
			Screen:    ScreenSummary,
			Category:  s.Category,
			Total:     total,
			Score:     s.Score,
			Celebrate: celebrate(s.Score, total),
			Submitted: s.Submitted,
		}
	default:
		return View{Screen: ScreenChooser, Categories: domain.Categories, Error: s.LastError}
	}
}

// celebrate reports a high score: at least 80% correct.
func celebrate(score, total int) bool {
	return total > 0 && score*5 >= total*4
}
