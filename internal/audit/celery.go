package audit

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// CeleryTaskName задача воркера журнала аудита, который разбирает сообщения
const CeleryTaskName = "process_audit_log"

// CeleryMessage - тело и заголовки сообщения в формате протокола задач Celery v2
type CeleryMessage struct {
	TaskID  string
	Body    []byte
	Headers map[string]any
}

// EncodeCelery упаковывает событие как вызов process_audit_log(event)
func EncodeCelery(event Event) (CeleryMessage, error) {
	taskID := uuid.NewString()

	body, err := json.Marshal([]any{
		[]any{event},
		map[string]any{},
		map[string]any{
			"callbacks": nil,
			"errbacks":  nil,
			"chain":     nil,
			"chord":     nil,
		},
	})
	if err != nil {
		return CeleryMessage{}, fmt.Errorf("encode audit event: %w", err)
	}

	return CeleryMessage{
		TaskID: taskID,
		Body:   body,
		Headers: map[string]any{
			"lang":      "py",
			"task":      CeleryTaskName,
			"id":        taskID,
			"root_id":   taskID,
			"parent_id": nil,
			"group":     nil,
		},
	}, nil
}
