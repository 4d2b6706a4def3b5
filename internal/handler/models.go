package handler

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateTeamRequest struct {
	Name         string   `json:"name"`
	Abbreviation string   `json:"abbreviation"`
	Members      []string `json:"members"`
}

type UpdateTeamRequest struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id"`
}

type TeamMemberResponse struct {
	TeamID string `json:"team_id"`
	UserID string `json:"user_id"`
}

type TeamResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Abbreviation string               `json:"abbreviation"`
	CampusCode   string               `json:"campus_code"`
	Status       string               `json:"status"`
	CreatedAt    string               `json:"created_at"`
	Members      []TeamMemberResponse `json:"members"`
}

type TeamListResponse struct {
	Teams []TeamResponse `json:"teams"`
}

type MemberListResponse struct {
	Members []TeamMemberResponse `json:"members"`
}

// AcceptedResponse - ответ на запрос, который будет применен асинхронно после согласования
type AcceptedResponse struct {
	Message     string        `json:"message"`
	RequestType string        `json:"request_type"`
	Status      string        `json:"status"`
	Team        *TeamResponse `json:"team,omitempty"`
	TeamID      string        `json:"team_id"`
	UserID      string        `json:"user_id,omitempty"`
}

type EligibilityResponse struct {
	TeamID        string `json:"team_id"`
	CompetitionID string `json:"competition_id"`
	Eligible      bool   `json:"eligible"`
	Message       string `json:"message"`
	MinMembers    int    `json:"min_members,omitempty"`
	MemberCount   int    `json:"member_count"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Consumer string `json:"consumer"`
}
