package intelligence

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Renderer wraps a Generator with a timeout and the template fallbacks.
// It never returns an error: every failure becomes a Fallback result.
type Renderer struct {
	Generator Generator // nil disables generation
	Timeout   time.Duration
	Logger    *zap.Logger
}

func NewRenderer(gen Generator, timeout time.Duration, logger *zap.Logger) *Renderer {
	return &Renderer{Generator: gen, Timeout: timeout, Logger: logger}
}

func (r *Renderer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.Timeout)
}

// RenderReminder produces the outgoing text for a reminder.
func (r *Renderer) RenderReminder(ctx context.Context, p ReminderPrompt) Rendered {
	fallback := Rendered{Text: FallbackReminder(p.Kind, p.ContactName, p.SubjectName, p.Detail), Fallback: true}
	if r.Generator == nil {
		return fallback
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	text, err := r.Generator.GenerateReminder(ctx, p)
	if err != nil || text == "" {
		r.Logger.Warn("Reminder generation failed, using template",
			zap.String("kind", string(p.Kind)), zap.Error(err))
		return fallback
	}
	return Rendered{Text: text}
}

// Reply answers a customer message. The booking block is only honoured for
// registered contacts and is always stripped from the text.
func (r *Renderer) Reply(ctx context.Context, p ChatPrompt) ChatReply {
	if r.Generator == nil {
		return ChatReply{Text: unavailableReply, Fallback: true}
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	raw, err := r.Generator.Reply(ctx, p)
	if err != nil || raw == "" {
		r.Logger.Warn("Chat generation failed", zap.Error(err))
		return ChatReply{Text: failedReply, Fallback: true}
	}

	reply := ChatReply{Text: StripAppointmentBlock(raw)}
	if p.Registered {
		if req, ok := ParseAppointmentRequest(raw); ok {
			reply.Appointment = req
		}
	}
	return reply
}
