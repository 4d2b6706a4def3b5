package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/bagdasarian/campus-teams/internal/config"
	"github.com/bagdasarian/campus-teams/internal/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

type ContextKey string

const PrincipalContextKey ContextKey = "principal"

// GroupAdmin снимает ограничение на кампус из токена
const GroupAdmin = "admin"

// Claims - полезная нагрузка токена сервиса аутентификации кампуса
type Claims struct {
	Matricula string   `json:"matricula"`
	Campus    string   `json:"campus"`
	Groups    []string `json:"groups"`
	jwt.RegisteredClaims
}

// Principal - аутентифицированный пользователь запроса
type Principal struct {
	UserID string
	Campus string
	Groups []string
	Token  string
}

func (p Principal) HasAnyGroup(groups ...string) bool {
	for _, g := range groups {
		if slices.Contains(p.Groups, g) {
			return true
		}
	}
	return false
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(PrincipalContextKey).(Principal)
	return p, ok
}

type Auth struct {
	secret      []byte
	adminGroups []string
	log         *logger.Logger
}

func NewAuth(cfg config.AuthConfig, log *logger.Logger) *Auth {
	return &Auth{secret: []byte(cfg.JWTSecret), adminGroups: cfg.AdminGroups, log: log}
}

// Authenticate проверяет Bearer-токен (HS256) и кладет Principal в контекст
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth token")
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims := &Claims{}
		_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			return a.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			a.log.Debug("token rejected", "error", err)
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}
		if claims.Matricula == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "token has no matricula claim")
			return
		}

		ctx := WithPrincipal(r.Context(), Principal{
			UserID: claims.Matricula,
			Campus: claims.Campus,
			Groups: claims.Groups,
			Token:  tokenStr,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CampusAccess пропускает запрос только к кампусу из токена, если пользователь не admin
func (a *Auth) CampusAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth token")
			return
		}

		campus := mux.Vars(r)["campus_code"]
		if campus != "" && campus != p.Campus && !p.HasAnyGroup(GroupAdmin) {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "no access to campus "+campus)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin ограничивает обработчик группами из AUTH_ADMIN_GROUPS
func (a *Auth) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok || !p.HasAnyGroup(a.adminGroups...) {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "operation requires one of groups: "+strings.Join(a.adminGroups, ", "))
			return
		}
		next(w, r)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
