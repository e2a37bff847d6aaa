package workflow

import "strings"

// composeLaunchPrompt builds the text sent into a freshly launched
// worker's terminal session: its governing instructions (system prompt)
// followed by the caller-supplied task prompt (spec.md §4.5.2 step 7
// "composed_prompt").
func composeLaunchPrompt(systemPrompt, prompt string) string {
	if systemPrompt == "" {
		return prompt
	}
	return systemPrompt + "\n\n" + prompt
}

// composeReviewPrompt builds the prompt sent into a spawned review
// worker's session: the configured default review prompt, the parent's
// original task context, and any caller-supplied review criteria (spec.md
// §4.5.3 step 8).
func composeReviewPrompt(template, parentPrompt, criteria string) string {
	var b strings.Builder
	b.WriteString(template)
	if parentPrompt != "" {
		b.WriteString("\n\nOriginal task:\n")
		b.WriteString(parentPrompt)
	}
	if criteria != "" {
		b.WriteString("\n\nReview criteria:\n")
		b.WriteString(criteria)
	}
	return b.String()
}

// changesRequestedMarker is the literal substring request_changes writes
// into the parent's session (spec.md §4.5.4: "a formatted block containing
// decision CHANGES REQUESTED and the review text").
const changesRequestedMarker = "CHANGES REQUESTED"

// composeFeedbackBlock formats the decision block request_changes injects
// into the parent coding worker's terminal session.
func composeFeedbackBlock(feedback string) string {
	var b strings.Builder
	b.WriteString("--- Review decision: ")
	b.WriteString(changesRequestedMarker)
	b.WriteString(" ---\n")
	b.WriteString(feedback)
	b.WriteString("\n--- end review ---")
	return b.String()
}
