package intelligence

import (
	"fmt"
	"strings"

	"vetflow/models"
)

const reminderSystemPrompt = "You write short messages for a veterinary clinic. Keep them brief and effective."

var toneInstructions = map[string]string{
	models.ToneFriendly:     "You are a warm, caring veterinary assistant. Talk to pet owners in a friendly, reassuring way.",
	models.ToneProfessional: "You are a professional, expert veterinary assistant. Be clear, accurate and trustworthy.",
	models.ToneCasual:       "You are a relaxed, chatty veterinary assistant. Answer in an everyday conversational style.",
}

func toneInstruction(tone string) string {
	if s, ok := toneInstructions[tone]; ok {
		return s
	}
	return toneInstructions[models.ToneFriendly]
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

const appointmentInstructions = `
BOOKING INSTRUCTIONS:
Registered customers can book appointments over chat. If the customer wants an appointment:
1. Ask which date and time they want.
2. Ask which service it is for (examination, vaccination, check-up, ...).
3. Once you have the answers, end your reply with this block:
` + blockOpen + `
date: YYYY-MM-DD
time: HH:MM
service: <service type>
` + blockClose + `
`

func buildSystemPrompt(cfg models.TenantConfig, registered bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the AI assistant of %s, a veterinary clinic.\n\n", orDefault(cfg.ClinicName, "the clinic"))
	b.WriteString(toneInstruction(cfg.Tone))
	fmt.Fprintf(&b, "\n\nServices offered:\n%s\n", orDefault(cfg.Services, "General veterinary services"))
	fmt.Fprintf(&b, "\nWorking hours:\n%s\n", orDefault(cfg.WorkingHoursText, "Weekdays 09:00-18:00"))
	if cfg.CustomInstructions != "" {
		fmt.Fprintf(&b, "\n%s\n", cfg.CustomInstructions)
	}
	if registered {
		b.WriteString(appointmentInstructions)
	}
	fmt.Fprintf(&b, `
Rules:
1. Always answer in the language with code %q.
2. For emergencies always tell them to come to the clinic.
3. Do not diagnose; give general information only.
4. Only registered customers can book; give unregistered ones the clinic phone number.
5. Do not quote prices; tell them to ask the clinic.
`, orDefault(cfg.Language, "en"))
	return b.String()
}

func buildConversation(history []models.ChatTurn, message string) string {
	var b strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Text)
	}
	fmt.Fprintf(&b, "%s: %s", RoleCustomer, message)
	return b.String()
}

func buildReminderPrompt(p ReminderPrompt) string {
	return fmt.Sprintf(`Write a chat reminder message for a veterinary clinic.

Customer name: %s
Pet: %s
Reminder type: %s
Details: %s
Clinic: %s
Tone: %s
Language: %s

Write a short, warm and professional message. Emojis are fine but do not overdo it.`,
		p.ContactName, p.SubjectName, p.Kind, p.Detail,
		orDefault(p.Tenant.ClinicName, "VetFlow Clinic"),
		orDefault(p.Tenant.Tone, models.ToneFriendly),
		orDefault(p.Tenant.Language, "en"))
}
