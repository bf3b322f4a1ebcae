package llm

import (
	"fmt"
	"strings"
)

const correctionSystemPrompt = "You are a professional speech-recognition post-processing assistant. " +
	"Correct recognition errors so the text reads naturally and stays consistent with its context. " +
	"Return only the corrected text with no explanations."

const translationSystemPrompt = "You are a professional subtitle translation assistant. " +
	"You must keep the original line breaks exactly, so the translated line count matches the source. " +
	"Return only the translation with no explanations or extra text."

func buildContextPrompt(contextBefore, contextAfter []string) string {
	var sb strings.Builder
	if len(contextBefore) > 0 {
		sb.WriteString("Preceding context:\n")
		sb.WriteString(strings.Join(contextBefore, "\n"))
		sb.WriteString("\n\n")
	}
	if len(contextAfter) > 0 {
		sb.WriteString("Following context:\n")
		sb.WriteString(strings.Join(contextAfter, "\n"))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func buildCorrectionPrompt(text string, contextBefore, contextAfter []string) string {
	return fmt.Sprintf(`Correct any speech-recognition errors in the following text. Preserve the meaning while making the language fluent and consistent with the context.

%sText to correct:
%s

Return only the corrected text, with no explanation. If the text is already correct, return it unchanged.`,
		buildContextPrompt(contextBefore, contextAfter), text)
}

func buildTranslationPrompt(text, targetLang string, contextBefore, contextAfter []string) string {
	return fmt.Sprintf(`You are a professional video subtitle translator. Translate the following text into %s.

Requirements:
1. Strictly keep the original line breaks: if the source has two lines, the translation must have two lines
2. Keep each translated line short enough for subtitle display
3. Preserve the tone and register of the source
4. Stay coherent with the surrounding context
5. Render colloquial phrasing with natural colloquial phrasing in the target language
6. Keep technical terms accurate
7. Preserve deliberate repetition or stuttering where the source has it

The line count must match the source exactly; subtitle timing depends on it.

%sText to translate:
%s

Return only the translation, one translated line per source line, with no explanation.`,
		targetLang, buildContextPrompt(contextBefore, contextAfter), text)
}
