package nodes

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatif-sim/internal/domain/models"
	"whatif-sim/internal/eino/config"
	"whatif-sim/pkg/retry"
)

const (
	seriousSample = "Economies would adjust slowly as institutions adapt to the new reality."
	funSample     = "Picture a parade of confused pigeons directing traffic with tiny whistles!"
)

func personalScenario() models.ProcessedScenario {
	return models.ProcessedScenario{
		OriginalText: "What if everyone could read minds?",
		ScenarioType: models.ScenarioPersonal,
		Complexity:   models.ComplexityModerate,
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapse blank lines", "one\n\n\n\ntwo", "one\n\ntwo"},
		{"keep single blank line", "one\n\ntwo", "one\n\ntwo"},
		{"blank lines with spaces", "one\n  \n \n\ntwo", "one\n\ntwo"},
		{"collapse long space runs", "a   b    c", "a b c"},
		{"keep double spaces", "a  b", "a  b"},
		{"windows newlines", "one\r\n\r\n\r\ntwo", "one\n\ntwo"},
		{"trim", "  text  ", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input, 0))
		})
	}
}

func TestCleanText_BreaksRunOnParagraphs(t *testing.T) {
	input := "First idea here. Second idea here. Third idea here. Fourth idea here. Fifth idea here."
	got := CleanText(input, 40)
	assert.Equal(t, "First idea here. Second idea here. Third idea here.\n\nFourth idea here. Fifth idea here.", got)

	// 低于阈值时不处理
	assert.Equal(t, input, CleanText(input, 1000))
}

func TestOutputFormatter_ValidateOutcomes(t *testing.T) {
	f := NewOutputFormatter(&config.FormatterConfig{MinOutcomeLength: 20})

	assert.True(t, f.ValidateOutcomes(seriousSample, funSample))
	assert.False(t, f.ValidateOutcomes("", funSample))
	assert.False(t, f.ValidateOutcomes(seriousSample, "word"))
	assert.False(t, f.ValidateOutcomes("    ", "    "))
}

func TestOutputFormatter_FormatResults(t *testing.T) {
	f := NewOutputFormatter(nil)
	s := personalScenario()

	out := f.FormatResults(seriousSample, funSample, s, 1234)
	assert.Equal(t, seriousSample, out.SeriousVersion)
	assert.Equal(t, funSample, out.FunVersion)
	assert.Equal(t, int64(1234), out.Metadata.ProcessingTime)
	assert.Equal(t, "personal", out.Metadata.ScenarioType)
	assert.Equal(t, "moderate", out.Metadata.Complexity)
}

func TestOutputFormatter_FormatResultsFallbacks(t *testing.T) {
	f := NewOutputFormatter(nil)
	s := personalScenario()

	tests := []struct {
		name        string
		serious     string
		fun         string
		wantSerious string
		wantFun     string
	}{
		{
			name:        "empty serious",
			serious:     "",
			fun:         funSample,
			wantSerious: retry.FallbackLabel + " " + retry.SeriousFallback(s.OriginalText),
			wantFun:     funSample,
		},
		{
			name:        "failure phrase in fun",
			serious:     seriousSample,
			fun:         "An error occurred while generating the fun version.",
			wantSerious: seriousSample,
			wantFun:     retry.FallbackLabel + " " + retry.FunFallback(s.OriginalText),
		},
		{
			name:        "identical versions",
			serious:     seriousSample,
			fun:         seriousSample,
			wantSerious: seriousSample,
			wantFun:     retry.FallbackLabel + " " + retry.FunFallback(s.OriginalText),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := f.FormatResults(tt.serious, tt.fun, s, 10)
			assert.Equal(t, tt.wantSerious, out.SeriousVersion)
			assert.Equal(t, tt.wantFun, out.FunVersion)
			assert.NotEqual(t, out.SeriousVersion, out.FunVersion)
		})
	}
}

func TestOutputFormatter_CreatePresentationOutput(t *testing.T) {
	f := NewOutputFormatter(nil)
	out := f.FormatResults(seriousSample, funSample, personalScenario(), 87)

	got := f.CreatePresentationOutput(out)
	want := strings.Join([]string{
		"👤 Personal Scenario (moderate complexity)",
		"",
		SeriousSectionTitle,
		seriousSample,
		"",
		SectionSeparator,
		"",
		FunSectionTitle,
		funSample,
		"",
		"Generated in 87ms",
	}, "\n")
	assert.Equal(t, want, got)

	// 段落顺序
	assert.Less(t, strings.Index(got, SeriousSectionTitle), strings.Index(got, SectionSeparator))
	assert.Less(t, strings.Index(got, SectionSeparator), strings.Index(got, FunSectionTitle))
}

func TestTypeLabel(t *testing.T) {
	tests := []struct {
		scenarioType string
		wantEmoji    string
		wantLabel    string
	}{
		{"personal", "👤", "Personal"},
		{"professional", "💼", "Professional"},
		{"historical", "📚", "Historical"},
		{"hypothetical", "🤔", "Hypothetical"},
		{"cosmic", "❓", "Unknown"},
		{"", "❓", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.scenarioType, func(t *testing.T) {
			emoji, label := TypeLabel(tt.scenarioType)
			assert.Equal(t, tt.wantEmoji, emoji)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}

func TestParsePresentation_RoundTrip(t *testing.T) {
	f := NewOutputFormatter(nil)
	types := []models.ScenarioType{
		models.ScenarioPersonal,
		models.ScenarioProfessional,
		models.ScenarioHistorical,
		models.ScenarioHypothetical,
		models.ScenarioType("unrecognized"),
	}

	for i, st := range types {
		t.Run(string(st), func(t *testing.T) {
			s := models.ProcessedScenario{OriginalText: "What if?", ScenarioType: st, Complexity: models.ComplexityComplex}
			out := f.FormatResults(seriousSample+"\n\nSecond paragraph of analysis here.", funSample, s, int64(i*100+7))

			p, err := ParsePresentation(f.CreatePresentationOutput(out))
			require.NoError(t, err)

			_, wantLabel := TypeLabel(string(st))
			assert.Equal(t, wantLabel, p.TypeLabel)
			assert.Equal(t, int64(i*100+7), p.ProcessingTime)
			assert.Equal(t, "complex", p.Complexity)
			assert.Equal(t, out.SeriousVersion, p.SeriousVersion)
			assert.Equal(t, out.FunVersion, p.FunVersion)
		})
	}
}

func TestParsePresentation_Errors(t *testing.T) {
	_, err := ParsePresentation("just one line")
	assert.Error(t, err)

	_, err = ParsePresentation("not a header\nbody")
	assert.Error(t, err)

	_, err = ParsePresentation("🤔 Hypothetical Scenario\nbody without trailer")
	assert.Error(t, err)
}

func TestParsePresentation_NoComplexity(t *testing.T) {
	f := NewOutputFormatter(nil)
	out := models.FormattedOutput{
		SeriousVersion: seriousSample,
		FunVersion:     funSample,
		Metadata:       models.OutputMetadata{ProcessingTime: 5, ScenarioType: "historical"},
	}

	p, err := ParsePresentation(f.CreatePresentationOutput(out))
	require.NoError(t, err)
	assert.Equal(t, "Historical", p.TypeLabel)
	assert.Empty(t, p.Complexity)
	assert.Equal(t, int64(5), p.ProcessingTime)
}

func TestOutputFormatter_Format(t *testing.T) {
	f := NewOutputFormatter(nil)
	s := personalScenario()

	got, err := f.Format(context.Background(), &FormatInput{
		Serious:          seriousSample,
		Fun:              funSample,
		Scenario:         s,
		ProcessingTimeMs: 42,
	})
	require.NoError(t, err)
	assert.Equal(t, f.FormatResults(seriousSample, funSample, s, 42), got)

	_, err = f.Format(context.Background(), nil)
	assert.Error(t, err)
}
