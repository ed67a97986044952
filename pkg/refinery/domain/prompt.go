package domain

import (
	"strings"
)

// buildRefinementPrompt frames the task as refining `text` according to `instructions`.
// Both are fenced so that the model can't confuse the instruction with the text it applies to.
func buildRefinementPrompt(text, instructions string) string {
	var buf strings.Builder
	buf.WriteString("Below is a draft text and an instruction. Refine the draft according to the instruction. ")
	buf.WriteString("If the draft already complies with the instruction, return it unchanged. ")
	buf.WriteString("Respond with the refined text only, without any commentary.\n\n")
	buf.WriteString("Instruction: ```\n")
	buf.WriteString(instructions)
	buf.WriteString("\n```\n\n")
	buf.WriteString("Draft: ```\n")
	buf.WriteString(text)
	buf.WriteString("\n```")
	return buf.String()
}
