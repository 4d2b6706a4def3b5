// Package audit строит и отправляет события аудита о зафиксированных переходах состояния.
package audit

import (
	"time"

	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/google/uuid"
)

const (
	ServiceOrigin = "teams_service"
	SystemUser    = "system"
	DefaultIP     = "127.0.0.1"

	EntityTeam = "team"
)

const (
	EventTeamCreated    = "teams.created"
	EventTeamDeleted    = "teams.deleted"
	EventMembersUpdated = "team.members.updated"
)

type OperationType string

const (
	OperationCreate OperationType = "CREATE"
	OperationUpdate OperationType = "UPDATE"
	OperationDelete OperationType = "DELETE"
)

type Event struct {
	Timestamp     string         `json:"timestamp"`
	CorrelationID string         `json:"correlation_id"`
	CampusCode    string         `json:"campus_code"`
	UserID        string         `json:"user_id"`
	ServiceOrigin string         `json:"service_origin"`
	EventType     string         `json:"event_type"`
	OperationType OperationType  `json:"operation_type"`
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id"`
	OldData       map[string]any `json:"old_data"`
	NewData       map[string]any `json:"new_data"`
	IPAddress     string         `json:"ip_address"`
}

// Params - входные данные для NewEvent. Пустые Actor и IPAddress заменяются значениями по умолчанию.
type Params struct {
	EventType     string
	OperationType OperationType
	EntityType    string
	EntityID      string
	CampusCode    string
	Actor         string
	IPAddress     string
	OldData       map[string]any
	NewData       map[string]any
}

func NewEvent(p Params) Event {
	actor := p.Actor
	if actor == "" {
		actor = SystemUser
	}
	ip := p.IPAddress
	if ip == "" {
		ip = DefaultIP
	}

	return Event{
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		CorrelationID: uuid.NewString(),
		CampusCode:    p.CampusCode,
		UserID:        actor,
		ServiceOrigin: ServiceOrigin,
		EventType:     p.EventType,
		OperationType: p.OperationType,
		EntityType:    p.EntityType,
		EntityID:      p.EntityID,
		OldData:       normalizeMap(p.OldData),
		NewData:       normalizeMap(p.NewData),
		IPAddress:     ip,
	}
}

// TeamSnapshot возвращает структурный снимок команды для old_data / new_data
func TeamSnapshot(team *domain.Team) map[string]any {
	if team == nil {
		return nil
	}
	members := make([]string, 0, len(team.Members))
	for _, m := range team.Members {
		members = append(members, m.UserID)
	}
	return map[string]any{
		"id":           team.ID,
		"name":         team.Name,
		"abbreviation": team.Abbreviation,
		"campus_code":  team.CampusCode,
		"status":       string(team.Status),
		"created_at":   team.CreatedAt,
		"members":      members,
	}
}

// Snapshot нормализует произвольный снимок сущности для old_data / new_data
func Snapshot(data map[string]any) map[string]any {
	return normalizeMap(data)
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

// normalize приводит UUID, время и вложенные коллекции к JSON-совместимым строкам и массивам
func normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case uuid.UUID:
		return val.String()
	case *uuid.UUID:
		if val == nil {
			return nil
		}
		return val.String()
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.UTC().Format(time.RFC3339Nano)
	case domain.TeamStatus:
		return string(val)
	case map[string]any:
		return normalizeMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	case []uuid.UUID:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item.String()
		}
		return out
	default:
		return val
	}
}
