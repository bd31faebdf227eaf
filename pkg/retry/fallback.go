package retry

import (
	"fmt"
	"strings"
)

// FallbackLabel 标记降级内容的前缀
const FallbackLabel = "[Fallback]"

// SeriousFallback 生成严肃视角的确定性降级文本
func SeriousFallback(scenario string) string {
	scenario = quoteScenario(scenario)
	return fmt.Sprintf("Unable to generate a full analysis right now. Looking at %s realistically, "+
		"the first effects would appear in daily routines, followed by slower shifts in institutions, "+
		"the economy and social norms. Most societies would adapt gradually, with early adopters gaining "+
		"an advantage while regulators and communities work out new rules.", scenario)
}

// FunFallback 生成趣味视角的确定性降级文本
func FunFallback(scenario string) string {
	scenario = quoteScenario(scenario)
	return fmt.Sprintf("Unable to generate the full creative take right now, but picture %s anyway! "+
		"Somewhere a very confused cat is already adjusting, talk shows have a brand new favourite topic, "+
		"and at least one inventor is selling commemorative mugs about it.", scenario)
}

func quoteScenario(scenario string) string {
	scenario = strings.TrimSpace(scenario)
	if scenario == "" {
		return "this scenario"
	}
	return "\"" + scenario + "\""
}
