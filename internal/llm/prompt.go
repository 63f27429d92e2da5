package llm

import (
	"strconv"
	"strings"
)

const (
	QuickTakeMaxTokens = 300
	ShortMaxTokens     = 600
	DetailedMaxTokens  = 1200
	ChatMaxTokens      = 600
	DefaultTemperature = 0.2
)

const quickTakeSystem = "You analyze legal documents and explain them in plain English."

const explainSystem = "You rewrite legal text into plain, simple English. Keep meaning accurate and neutral. Use short sentences and bullet points."

const chatSystem = "You are a helpful legal explainer. Answer questions about the provided document only. If unsure, say you are unsure. Keep it plain English and concise."

// QuickTakeMessages asks for a 3-6 bullet overview of the document.
func QuickTakeMessages(document string) []Message {
	user := strings.Join([]string{
		"Provide a very short Quick take:",
		"- What type of document is this?",
		"- What is it about?",
		"- Most pressing issue(s) or risks to watch",
		"- Any deadlines/obligations",
		"Use 3-6 bullet points.",
		"",
		"DOCUMENT:",
		document,
	}, "\n")
	return []Message{System(quickTakeSystem), User(user)}
}

// ExplainMessages asks for the four-part explanation of one document part.
// part and parts are 1-based; parts > 1 tells the model it sees an excerpt.
func ExplainMessages(text string, short bool, part, parts int) []Message {
	var b strings.Builder
	if short {
		b.WriteString("Summarize briefly in plain English at a grade 8 reading level.\n")
	} else {
		b.WriteString("Explain thoroughly but clearly in plain English at a grade 8 reading level.\n")
	}
	b.WriteString("Use exactly these four sections:\n")
	b.WriteString("## Summary\nOne short paragraph on what this document does.\n")
	b.WriteString("## Key points\nBullet points with the main terms, amounts and dates.\n")
	b.WriteString("## Watch out for\nBullet points with risks, penalties or unusual clauses.\n")
	b.WriteString("## Next steps\nBullet points with what the reader should do.\n")
	if parts > 1 {
		b.WriteString("\nThis is part ")
		b.WriteString(strconv.Itoa(part))
		b.WriteString(" of ")
		b.WriteString(strconv.Itoa(parts))
		b.WriteString(" of a longer document. Cover only this part.\n")
	}
	b.WriteString("\nTEXT:\n")
	b.WriteString(text)
	return []Message{System(explainSystem), User(b.String())}
}

// ChatMessages grounds a question in the document text.
func ChatMessages(document, question string) []Message {
	user := "Document:\n" + document + "\n\nQuestion: " + question + "\n\nAnswer:"
	return []Message{System(chatSystem), User(user)}
}
