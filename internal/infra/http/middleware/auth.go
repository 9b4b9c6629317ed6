package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Success: false, Error: msg, Code: code})
}

// BearerAuth protege as rotas com um token fixo. Sem token configurado
// toda requisição falha com 500; header ausente ou malformado é 401; token
// errado é 403.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				writeError(w, http.StatusInternalServerError, "SERVER_MISCONFIGURED", "Server configuration error")
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
				return
			}
			got, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || got == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format. Use: Bearer <token>")
				return
			}

			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
