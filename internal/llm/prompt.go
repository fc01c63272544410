package llm

import (
	"fmt"
	"strings"
)

// BuildSystemPrompt generates the system prompt for cleaning up one
// recognized lyric line
func BuildSystemPrompt(keywords []string, language string) string {
	var b strings.Builder

	b.WriteString("You are a lyrics editor. Your input is one line of song lyrics produced by speech recognition on an isolated vocal track.\n\n")
	b.WriteString("Tasks:\n")
	b.WriteString("- Fix words the recognizer obviously misheard\n")
	b.WriteString("- Fix capitalization\n")
	b.WriteString("- Remove recognizer artifacts such as [Music] or (instrumental)\n")

	b.WriteString("\nRules:\n")
	b.WriteString("- Keep the same language as the input\n")
	b.WriteString("- Keep repetitions and vocalizations (oh, la la, yeah): they are part of the song\n")
	b.WriteString("- Do not add words that were not sung\n")
	b.WriteString("- Do not add punctuation at the end of the line\n")
	b.WriteString("- Output ONLY the corrected line on a single line, nothing else\n")
	b.WriteString("- If the input is nonsensical, return it as-is\n")

	if language != "" {
		fmt.Fprintf(&b, "\nThe song is in language code %q.\n", language)
	}
	if len(keywords) > 0 {
		fmt.Fprintf(&b, "\nContext keywords (use correct spelling for these terms): %s\n", strings.Join(keywords, ", "))
	}

	return b.String()
}

// BuildUserPrompt generates the user prompt with the text to process
func BuildUserPrompt(text string, customPrompt string) string {
	if customPrompt != "" {
		return fmt.Sprintf("%s\n\nText to process:\n%s", customPrompt, text)
	}
	return text
}
