package conversation

import "fmt"

// historyLimit bounds the rolling context window, in characters. Oldest
// content is dropped from the front.
const historyLimit = 300

func appendTurn(history, userText, botText string) string {
	return truncateTail(history+formatTurn(userText, botText), historyLimit)
}

func seedTurn(userText, botText string) string {
	return truncateTail(formatTurn(userText, botText), historyLimit)
}

func seedMoodTurn(mood, botText string) string {
	return truncateTail(fmt.Sprintf("User selected mood: %s | Bot: %s ", mood, botText), historyLimit)
}

func formatTurn(userText, botText string) string {
	return fmt.Sprintf("User: %s | Bot: %s ", userText, botText)
}

// truncateTail keeps the trailing limit characters of s, rune-safe.
func truncateTail(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[len(runes)-limit:])
}
