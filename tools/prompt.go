package tools

import (
	"fmt"
	"strings"
)

// ClassifierExcerptLen is how many characters of a transcription the
// classifier sees.
const ClassifierExcerptLen = 100

const TranscribePrompt = `This is a picture of a grocery list. Please transcribe it, and organize the items into categories.

If you are absolutely certain this is not a picture of a grocery list, say so, and say something moderately insulting about what the user wrote, in the style of a sardonic comic-fantasy narrator. Really roast them.
Do not name any author, book series, setting or character; only borrow the style. Do not mention groceries or lists, and do not use any newlines.

If this is a picture of a grocery list, transcribe it and organize the items into categories according to the following rules:

Do not extemporize, do not use the narrator voice and do not insult the user.

Include emojis in each category name, placed at the end. Always try to give a category an emoji, but never give an individual item an emoji.

If any text is illegible, make your best guess as to what it says and put it in a category called "Unsure".

If an item doesn't belong in a clear category and it is not "Unsure", place it in "Other".

Only list the items and categories, with no speculation or explanation.`

// ParsePrompt asks the model to structure a transcription with the grocery_items tool.
func ParsePrompt(text string) string {
	return fmt.Sprintf(`Take this text grocery list and parse it into a JSON object using the %s tool.

Include emojis in each category name, placed at the end. Always include the category emoji(s), even if you have to make them up.

Here is the text:

%s`, GroceryItemsName, text)
}

// ClassifyPrompt asks whether the excerpt of a transcription is a grocery list.
func ClassifyPrompt(text string) string {
	return fmt.Sprintf(`Please tell me, using the %s tool, if the following message is a transcribed grocery list or a message about something that is not a grocery list.

%s`, IsGroceryListName, Excerpt(text, ClassifierExcerptLen))
}

// Excerpt returns at most n runes from the start of s.
func Excerpt(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// JoinTranscriptions merges per-image transcriptions in order.
func JoinTranscriptions(texts []string) string {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}
