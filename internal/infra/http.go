package infra

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/JovanneSousa/health-chat-sync/internal/api"
	"github.com/JovanneSousa/health-chat-sync/internal/config"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

var publicPaths = map[string]struct{}{
	"/api/auth/sign-in": {},
	"/api/auth/sign-up": {},
}

// AuthInterceptorHTTP resolves the bearer session token and puts the caller's
// identity into the request context. Sign-in and sign-up pass through.
func AuthInterceptorHTTP(next http.Handler, sessions SessionResolver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := publicPaths[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			writeError(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		session, err := sessions.Current(r.Context(), token)
		if err != nil {
			if errors.Is(err, model.ErrNoSession) {
				writeError(w, "session expired or signed out", http.StatusUnauthorized)
				return
			}
			writeError(w, "failed to resolve session", http.StatusServiceUnavailable)
			return
		}

		ctx := context.WithValue(r.Context(), config.KeyUUID, session.Identity.ID)
		ctx = context.WithValue(ctx, config.KeyRole, session.Identity.Role)
		ctx = context.WithValue(ctx, config.KeyIdentity, session.Identity)
		ctx = context.WithValue(ctx, config.KeyToken, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func LoggerHTTP(next http.Handler, logger logger_lib.LoggerInterface) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), config.KeyLogger, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(api.Error{Error: message})
}
