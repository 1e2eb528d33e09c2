package intelligence

import (
	"regexp"
	"strings"

	"vetflow/models"
)

const (
	blockOpen  = "[APPOINTMENT_REQUEST]"
	blockClose = "[/APPOINTMENT_REQUEST]"
)

var (
	blockPattern   = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(blockOpen) + `(.*?)` + regexp.QuoteMeta(blockClose))
	datePattern    = regexp.MustCompile(`date:\s*(\d{4}-\d{2}-\d{2})`)
	timePattern    = regexp.MustCompile(`time:\s*(\d{1,2}:\d{2})`)
	servicePattern = regexp.MustCompile(`service:\s*(.+?)(?:\n|$)`)
)

// DefaultService is used when the block omits a service line.
const DefaultService = "Examination"

// ParseAppointmentRequest extracts the booking block from a generated reply.
// Both date and time must be present.
func ParseAppointmentRequest(reply string) (*models.AppointmentRequest, bool) {
	m := blockPattern.FindStringSubmatch(reply)
	if m == nil {
		return nil, false
	}
	body := strings.TrimSpace(m[1])

	var req models.AppointmentRequest
	if d := datePattern.FindStringSubmatch(body); d != nil {
		req.Date = d[1]
	}
	if t := timePattern.FindStringSubmatch(body); t != nil {
		req.Time = t[1]
	}
	if s := servicePattern.FindStringSubmatch(body); s != nil {
		req.Service = strings.TrimSpace(s[1])
	}
	if req.Date == "" || req.Time == "" {
		return nil, false
	}
	if req.Service == "" {
		req.Service = DefaultService
	}
	return &req, true
}

// StripAppointmentBlock removes the booking markup before the text reaches the customer.
func StripAppointmentBlock(reply string) string {
	return strings.TrimSpace(blockPattern.ReplaceAllString(reply, ""))
}
