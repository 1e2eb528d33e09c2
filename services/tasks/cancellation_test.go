package tasks

import (
	"testing"

	"github.com/hibiken/asynq"
)

func TestCancellationTaskRoundTrip(t *testing.T) {
	task, opts, err := NewCancellationTask(CancellationPayload{TenantID: "t1", BookingID: "b1"})
	if err != nil {
		t.Fatalf("NewCancellationTask: %v", err)
	}
	if task.Type() != TypeCancellationNotice || len(opts) == 0 {
		t.Fatalf("unexpected task: %s %v", task.Type(), opts)
	}
	p, err := ParseCancellationPayload(task)
	if err != nil || p.TenantID != "t1" || p.BookingID != "b1" {
		t.Fatalf("ParseCancellationPayload = %+v, %v", p, err)
	}
}

func TestParseCancellationPayloadRejectsGarbage(t *testing.T) {
	if _, err := ParseCancellationPayload(asynq.NewTask(TypeCancellationNotice, []byte("{"))); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := ParseCancellationPayload(asynq.NewTask(TypeCancellationNotice, []byte(`{"tenantId":"t1"}`))); err == nil {
		t.Fatal("expected missing id error")
	}
}
