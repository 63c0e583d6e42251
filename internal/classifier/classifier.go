package classifier

import (
	"strings"

	"github.com/ritchiero/Budget-Agent/internal/model"
)

// Category is a spending category a message is billed under
type Category string

const (
	Heartbeat         Category = "heartbeat"
	MemoryResync      Category = "memory_resync"
	WhatsAppReconnect Category = "whatsapp_reconnect"
	EmailCheck        Category = "email_check"
	CostReport        Category = "cost_report"
	CronTask          Category = "cron_task"
	UserRequest       Category = "user_request"
	Response          Category = "response"
	Other             Category = "other"
)

// All lists every category in reporting order
var All = []Category{
	Heartbeat,
	MemoryResync,
	WhatsAppReconnect,
	EmailCheck,
	CostReport,
	CronTask,
	UserRequest,
	Response,
	Other,
}

var descriptions = map[Category]string{
	Heartbeat:         "Health check pings (WhatsApp, himalaya, cron)",
	MemoryResync:      "SOUL.md + conversation history reloads",
	WhatsAppReconnect: "WhatsApp gateway disconnect/reconnect",
	EmailCheck:        "Himalaya IMAP inbox scans",
	CostReport:        "Auto cost report generation",
	CronTask:          "Scheduled/cron tasks",
	UserRequest:       "Your actual requests",
	Response:          "Agent responses to you",
	Other:             "Unclassified",
}

// Description returns the human-readable description of a category
func (c Category) Description() string {
	return descriptions[c]
}

// UserInitiated reports whether spend in this category was asked for by the user
func (c Category) UserInitiated() bool {
	return c == UserRequest || c == Response
}

// Rule assigns Category when any keyword is a substring of the lowercased text
type Rule struct {
	Category Category
	Keywords []string
}

func (r Rule) matches(text string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Rules are evaluated top to bottom; the first match wins.
var Rules = []Rule{
	{Heartbeat, []string{"heartbeat", "heartbeat_ok", "health check", "systems nominal", "all systems", "routine check"}},
	{WhatsAppReconnect, []string{"whatsapp", "gateway disconnect", "reconnect", "status 428", "connection lost", "reconectando", "desconect"}},
	{MemoryResync, []string{"memory resync", "soul.md", "loading conversation", "context reload", "compaction", "summarizing history"}},
	{EmailCheck, []string{"himalaya", "inbox", "email scan", "checking email", "new emails", "correo", "mail check"}},
	{CostReport, []string{"cost report", "session cost", "daily usage", "token usage", "spending report", "costo de sesion"}},
	{CronTask, []string{"cron", "scheduled", "automated task", "periodic"}},
}

// Classify maps a message to its cost category
func Classify(msg model.LogMessage) Category {
	return ClassifyText(msg.Role(), msg.Message.Content.Flatten())
}

// ClassifyText classifies by content keywords, then by role
func ClassifyText(role, content string) Category {
	text := strings.ToLower(content)
	for _, r := range Rules {
		if r.matches(text) {
			return r.Category
		}
	}

	switch role {
	case "user":
		return UserRequest
	case "assistant":
		return Response
	}
	return Other
}
