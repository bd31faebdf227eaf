package components

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"whatif-sim/internal/eino/nodes"
)

var seriousOpeners = []string{
	"In the first weeks, %s would mostly show up as small disruptions to daily routines.",
	"Realistically, %s would ripple outward from individuals to institutions over several years.",
	"The immediate consequence of %s would be uncertainty, followed by a slow search for new norms.",
}

var funOpeners = []string{
	"Buckle up! In a world where %s, breakfast cereal mascots would hold emergency press conferences!!",
	"Picture it: %s, and suddenly every grandmother becomes an influencer overnight!",
	"Plot twist!!! Once %s, the pigeons finally reveal they were running things all along!",
}

// DemoGenerator 确定性的演示生成能力，不依赖外部服务。
// 按提示词首行指令中的 serious/realistic 或 fun/creative 字样选择风格，同一场景总是得到相同输出。
type DemoGenerator struct {
	latency time.Duration
}

// NewDemoGenerator 创建演示生成器，latency 为模拟的响应延迟
func NewDemoGenerator(latency time.Duration) *DemoGenerator {
	return &DemoGenerator{latency: latency}
}

// GenerateResponse 实现 services.TextGenerator
func (g *DemoGenerator) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	scenario := nodes.ScenarioFromPrompt(prompt)
	if scenario == "" {
		scenario = "this scenario"
	}
	subject := strings.TrimRight(lowerFirst(trimOpener(scenario)), "?.! ")

	// 只看首行指令，场景原文里的 serious/fun 等字样不参与分派
	instruction, _, _ := strings.Cut(prompt, "\n")
	lower := strings.ToLower(instruction)
	switch {
	case strings.Contains(lower, "serious") || strings.Contains(lower, "realistic"):
		return seriousResponse(subject, pick(scenario, len(seriousOpeners))), nil
	case strings.Contains(lower, "fun") || strings.Contains(lower, "creative"):
		return funResponse(subject, pick(scenario, len(funOpeners))), nil
	default:
		return fmt.Sprintf("Here is a short reflection on %s: it would change more than expected, "+
			"and people would adapt in ways that are hard to predict today.", subject), nil
	}
}

func seriousResponse(subject string, idx int) string {
	var b strings.Builder
	fmt.Fprintf(&b, seriousOpeners[idx], subject)
	b.WriteString("\n\n")
	b.WriteString("However, most of the lasting effects would come from how people and organizations respond:\n")
	b.WriteString("- Governments would debate new rules and update existing laws\n")
	b.WriteString("- Businesses would look for ways to profit from the change\n")
	b.WriteString("- Communities would develop new habits and expectations\n\n")
	b.WriteString("Therefore, the long-term picture depends less on the change itself and more on the ")
	b.WriteString("choices made in the first few years. Additionally, the benefits would likely be uneven at first.")
	return b.String()
}

func funResponse(subject string, idx int) string {
	var b strings.Builder
	fmt.Fprintf(&b, funOpeners[idx], subject)
	b.WriteString("\n\n")
	b.WriteString("* Talk shows would run 24-hour marathons on the topic\n")
	b.WriteString("* Someone would invent a board game about it by Tuesday\n")
	b.WriteString("* Cats would remain completely unimpressed\n\n")
	b.WriteString("Honestly? Best timeline ever!")
	return b.String()
}

// pick 按场景文本选择模板，保证同一输入输出稳定
func pick(scenario string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(scenario))
	return int(h.Sum32() % uint32(n))
}

func trimOpener(s string) string {
	lower := strings.ToLower(s)
	for _, opener := range []string{"what if ", "suppose ", "imagine if ", "let's say ", "hypothetically "} {
		if strings.HasPrefix(lower, opener) {
			return strings.TrimSpace(s[len(opener):])
		}
	}
	return s
}

func lowerFirst(s string) string {
	if s == "" || strings.HasPrefix(s, "I ") {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
