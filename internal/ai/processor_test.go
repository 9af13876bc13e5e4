package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alvarmz/riffwire/internal/models"
)

type fakeProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeProvider) Chat(_ context.Context, _ ChatRequest) (*ChatResponse, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	content := ""
	if i < len(f.responses) {
		content = f.responses[i]
	}
	return &ChatResponse{Content: content, Provider: "fake"}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func testBand() Band {
	return Band{
		Name:    "Metallica",
		Members: []string{"James Hetfield", "Lars Ulrich"},
	}
}

func newTestProcessor(p Provider) (*Processor, *[]time.Duration) {
	proc := NewProcessor(p, testBand())
	var slept []time.Duration
	proc.sleep = func(d time.Duration) { slept = append(slept, d) }
	return proc, &slept
}

func validRewriteJSON(t *testing.T) string {
	t.Helper()
	long := strings.Repeat("The band announced a new world tour today. ", 10)
	r := models.RewrittenArticle{
		TitleEN:        "Metallica Announce New World Tour",
		TitleES:        "Metallica anuncia nueva gira mundial",
		DescriptionEN:  long,
		DescriptionES:  long,
		ImageCaptionEN: "Metallica on stage",
		ImageCaptionES: "Metallica en el escenario",
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return string(b)
}

func TestIsRelevant(t *testing.T) {
	article := models.CandidateArticle{Title: "Some headline", Body: "Some body"}

	tests := []struct {
		name     string
		provider *fakeProvider
		want     bool
	}{
		{
			name:     "relevant verdict",
			provider: &fakeProvider{responses: []string{`{"is_relevant": true, "reason": "band news"}`}},
			want:     true,
		},
		{
			name:     "irrelevant verdict",
			provider: &fakeProvider{responses: []string{`{"is_relevant": false, "reason": "about another act"}`}},
			want:     false,
		},
		{
			name:     "fenced verdict",
			provider: &fakeProvider{responses: []string{"```json\n{\"is_relevant\": false, \"reason\": \"off topic\"}\n```"}},
			want:     false,
		},
		{
			name:     "provider error keeps article",
			provider: &fakeProvider{errs: []error{errors.New("timeout")}},
			want:     true,
		},
		{
			name:     "unparsable reply keeps article",
			provider: &fakeProvider{responses: []string{"I think it is relevant"}},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc, _ := newTestProcessor(tt.provider)
			if got := proc.IsRelevant(context.Background(), article); got != tt.want {
				t.Errorf("IsRelevant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRewriteSucceedsFirstAttempt(t *testing.T) {
	fp := &fakeProvider{responses: []string{validRewriteJSON(t)}}
	proc, slept := newTestProcessor(fp)

	got, err := proc.Rewrite(context.Background(), models.CandidateArticle{Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got.TitleEN != "Metallica Announce New World Tour" {
		t.Errorf("TitleEN = %q", got.TitleEN)
	}
	if fp.calls != 1 {
		t.Errorf("provider calls = %d, want 1", fp.calls)
	}
	if len(*slept) != 0 {
		t.Errorf("slept %v, want no backoff on first attempt", *slept)
	}
}

func TestRewriteRetriesWithBackoff(t *testing.T) {
	fp := &fakeProvider{
		responses: []string{"not json", `{"title_en": "too short"}`, validRewriteJSON(t)},
	}
	proc, slept := newTestProcessor(fp)

	if _, err := proc.Rewrite(context.Background(), models.CandidateArticle{}); err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if fp.calls != 3 {
		t.Errorf("provider calls = %d, want 3", fp.calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("slept %v, want %v", *slept, want)
	}
	for i := range want {
		if (*slept)[i] != want[i] {
			t.Errorf("backoff %d = %v, want %v", i, (*slept)[i], want[i])
		}
	}
}

func TestRewriteExhaustsAttempts(t *testing.T) {
	fp := &fakeProvider{responses: []string{"garbage", "garbage", "garbage"}}
	proc, _ := newTestProcessor(fp)

	_, err := proc.Rewrite(context.Background(), models.CandidateArticle{})
	if !errors.Is(err, ErrRewriteFailed) {
		t.Fatalf("Rewrite() error = %v, want ErrRewriteFailed", err)
	}
	if fp.calls != 3 {
		t.Errorf("provider calls = %d, want 3", fp.calls)
	}
}

func TestValidateRewrite(t *testing.T) {
	long := strings.Repeat("x", 350)
	valid := models.RewrittenArticle{
		TitleEN:        "A perfectly fine headline",
		TitleES:        "Un titular perfectamente bien",
		DescriptionEN:  long,
		DescriptionES:  long,
		ImageCaptionEN: "A caption",
		ImageCaptionES: "Una leyenda",
	}

	tests := []struct {
		name    string
		mutate  func(*models.RewrittenArticle)
		wantErr bool
	}{
		{"valid", func(*models.RewrittenArticle) {}, false},
		{"missing spanish title", func(r *models.RewrittenArticle) { r.TitleES = "" }, true},
		{"title too long", func(r *models.RewrittenArticle) { r.TitleEN = strings.Repeat("y", 101) }, true},
		{"description too short", func(r *models.RewrittenArticle) { r.DescriptionEN = "brief" }, true},
		{"description too long", func(r *models.RewrittenArticle) { r.DescriptionES = strings.Repeat("z", 4501) }, true},
		{"caption too short", func(r *models.RewrittenArticle) { r.ImageCaptionEN = "hi" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := validateRewrite(&r)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRewrite() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounded by prose", `Sure, here you go: {"a": 1} hope that helps`, `{"a": 1}`},
		{"array", `[1, 2]`, `[1, 2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
