package middleware

import (
	"net/http"

	"github.com/nivash/building-service/internal/models"
	"github.com/nivash/building-service/internal/repositories"
	"github.com/nivash/building-service/internal/utils"
)

// RequireRole gates a subtree behind one or more roles. It must run
// after AuthMiddleware (it reads the principal's email from context).
// The role is fetched from the users table on every request, never from
// the token, so an agreement acceptance or member removal takes effect
// immediately. Rejections echo the attempted path in the error details
// for diagnostics only.
func RequireRole(userRepo repositories.UserRepository, roles ...models.RoleType) func(http.Handler) http.Handler {
	allowed := make(map[models.RoleType]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctxEmail := r.Context().Value(ContextKeyUserEmail)
			if ctxEmail == nil {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing principal in context", nil,
				)
				return
			}

			user, err := userRepo.GetByEmail(r.Context(), ctxEmail.(string))
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to resolve role", nil, err,
				)
				return
			}
			if user == nil {
				utils.RespondErrorWithCode(
					w, http.StatusForbidden, utils.ErrCodeForbidden, "No account record for this principal",
					map[string]string{"attempted_path": r.URL.Path},
				)
				return
			}

			if _, ok := allowed[user.Role]; !ok {
				utils.RespondErrorWithCode(
					w, http.StatusForbidden, utils.ErrCodeForbidden, "Insufficient permissions",
					map[string]string{"attempted_path": r.URL.Path},
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
