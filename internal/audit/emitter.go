package audit

import "context"

// Emitter публикует событие аудита во внешний журнал.
// Ошибку Emit вызывающий пишет в лог уровня CRITICAL, зафиксированный переход она не отменяет.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
