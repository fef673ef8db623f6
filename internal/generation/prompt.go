package generation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"standup-service/pkg/models"
)

const systemInstruction = `You are a professional software engineer assistant designed to format daily standups.
Your goal is to take raw, messy notes or voice transcripts and convert them into a clean, professional standup.

### Consistency Guard Rules:
1. **Contradiction Detection**: Compare the current raw input with the "Previous Standup Context" provided.
2. **Zombie Task Detection**: If a task was marked as "Completed" or "Done" in the previous standup but appears again in today's "Working on today" section without context, flag it.
3. **Refinement Suggestion**: Instead of just repeating a completed task, suggest a more logical continuation.
4. **Tone**: Stay professional and engineering-focused.
5. **Ticket Integration**: If "Selected Active Jira Tickets" are provided, incorporate them into the "What I am working on today" section if they are relevant to the raw notes, or if the notes are sparse, assume these are the focus. Use the format "[KEY] Title".

### Formatting Rules:
- **Format**:
  <Standup Header Date>
  **What I did the last working day:**
  - [Task 1]
  **Blockers:**
  - [Blocker details or "None"]
  **What I am working on today:**
  - [Task 1]

### Response Format:
You must return a JSON object with:
1. "standupText": The full formatted markdown standup.
2. "consistencyNotes": An array of short strings explaining any contradictions or suggestions.`

const refineInstruction = `You are a professional editor. You will receive an existing standup draft and a user's instruction for modification.
Update the standup draft according to the instruction while maintaining the exact markdown structure and professional tone.
Do not lose existing information unless explicitly asked to remove it.
Return a JSON object with "standupText" (the full updated markdown) and "consistencyNotes" (an array of short strings).`

// FormatStandupDate renders the standup header date, e.g. "1/7/2026 Wednesday"
// for July 1st.
func FormatStandupDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d %s", t.Day(), int(t.Month()), t.Year(), t.Weekday())
}

type promptTicket struct {
	Key    string              `json:"key"`
	Title  string              `json:"title"`
	Status models.TicketStatus `json:"status"`
}

func generatePrompt(req Request, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current Date: %s\n", now.Format("Jan 2, 2006"))
	fmt.Fprintf(&b, "Standup Header Date: %s\n", FormatStandupDate(now))

	if len(req.SelectedTickets) > 0 {
		tickets := make([]promptTicket, 0, len(req.SelectedTickets))
		for _, t := range req.SelectedTickets {
			tickets = append(tickets, promptTicket{Key: t.TicketKey, Title: t.Title, Status: t.Status})
		}
		data, _ := json.Marshal(tickets)
		b.WriteString("\nSelected Active Jira Tickets (Include these in \"Working on today\" or \"Last working day\" based on context):\n")
		b.Write(data)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nRaw Notes:\n\"\"\"\n%s\n\"\"\"\n", req.RawInput)

	if strings.TrimSpace(req.PreviousContext) != "" {
		fmt.Fprintf(&b, "\nPrevious Standup Context:\n\"\"\"\n%s\n\"\"\"", req.PreviousContext)
	}
	return b.String()
}

func refinePrompt(currentText, instruction string) string {
	return fmt.Sprintf("Current Draft:\n\"\"\"\n%s\n\"\"\"\n\nUser Instruction: %q", currentText, instruction)
}
