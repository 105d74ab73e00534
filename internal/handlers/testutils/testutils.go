// Package testutils готовит запросы так же, как их подготовил бы роутер
package testutils

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sourcing/internal/auth"
)

// WithChiURLParams подставляет параметры пути в контекст chi запроса для тестов.
func WithChiURLParams(req *http.Request, params map[string]string) *http.Request {
	chiCtx := chi.NewRouteContext()
	for k, v := range params {
		chiCtx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

// AsUser добавляет в запрос авторизованного пользователя
func AsUser(req *http.Request, userID int64, perms ...string) *http.Request {
	id := auth.Identity{UserID: userID, Username: "tester", Permissions: perms}
	return req.WithContext(auth.WithIdentity(req.Context(), id))
}
