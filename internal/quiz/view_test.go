package quiz

import (
	"testing"

	"category-quiz-service/internal/domain"
)

func sampleSnapshot(state State) Snapshot {
	return Snapshot{
		UserID:   "u1",
		State:    state,
		Category: domain.History,
		Questions: []domain.Question{
			{ID: "q1", Category: domain.History, Prompt: "Year of the Battle of Hastings?", Options: [4]string{"1066", "1215", "1492", "1789"}, Correct: "a"},
			{ID: "q2", Category: domain.History, Prompt: "First man on the moon?", Options: [4]string{"Gagarin", "Armstrong", "Aldrin", "Collins"}, Correct: "b"},
		},
	}
}

func TestRenderChooserShowsCategoriesAndError(t *testing.T) {
	s := Snapshot{State: Idle, LastError: "store unavailable"}
	v := Render(s)
	if v.Screen != ScreenChooser {
		t.Fatalf("expected chooser, got %s", v.Screen)
	}
	if len(v.Categories) != len(domain.Categories) {
		t.Fatalf("expected %d categories, got %d", len(domain.Categories), len(v.Categories))
	}
	if v.Error != "store unavailable" {
		t.Fatalf("expected error to be surfaced, got %q", v.Error)
	}
}

func TestRenderActiveHidesCorrectAnswer(t *testing.T) {
	v := Render(sampleSnapshot(Active))
	if v.Screen != ScreenQuestion || v.Position != 1 || v.Total != 2 {
		t.Fatalf("unexpected view %+v", v)
	}
	for _, opt := range v.Options {
		if opt.Correct || opt.Wrong {
			t.Fatalf("correct answer leaked before reveal: %+v", opt)
		}
	}
}

func TestRenderRevealMarksCorrectAndWrong(t *testing.T) {
	s := sampleSnapshot(Revealing)
	s.Selected = "c"
	s.Reveal = true
	v := Render(s)
	if !v.Locked {
		t.Fatalf("expected options locked while revealing")
	}
	got := map[string]OptionView{}
	for _, opt := range v.Options {
		got[opt.Label] = opt
	}
	if !got["a"].Correct || got["a"].Wrong {
		t.Fatalf("expected a marked correct, got %+v", got["a"])
	}
	if !got["c"].Wrong || !got["c"].Selected {
		t.Fatalf("expected c marked wrong, got %+v", got["c"])
	}
}

func TestRenderSummaryCelebratesHighScore(t *testing.T) {
	s := sampleSnapshot(Terminal)
	s.Score = 2
	v := Render(s)
	if v.Screen != ScreenSummary || !v.Celebrate {
		t.Fatalf("expected celebrating summary, got %+v", v)
	}
	s.Score = 1
	if Render(s).Celebrate {
		t.Fatalf("did not expect celebration for 1/2")
	}
}
