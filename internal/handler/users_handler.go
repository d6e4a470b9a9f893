package handler

import (
	"net/http"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/service"
)

// ============================================================
// Users
// ============================================================

func listUsersHandler(svc *service.UserService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /users")
		defer span.End()

		users, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeList(w, users)
	}
}

func meHandler(svc *service.UserService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /users/me")
		defer span.End()

		user, err := svc.Me(ctx, PrincipalFromContext(ctx))
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, user, "")
	}
}

func assignableUsersHandler(svc *service.UserService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /users/assignable")
		defer span.End()

		users, err := svc.ListAssignable(ctx)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeList(w, users)
	}
}

func getUserHandler(svc *service.UserService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /users/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		user, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, user, "")
	}
}

func createUserHandler(svc *service.UserService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /users")
		defer span.End()

		var req domain.CreateUserRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		user, err := svc.Create(ctx, PrincipalFromContext(ctx).ID, &req)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusCreated, user, "User created successfully")
	}
}

func updateUserHandler(svc *service.UserService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /users/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		var req domain.UpdateUserRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		user, err := svc.Update(ctx, PrincipalFromContext(ctx).ID, id, &req)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, user, "User updated successfully")
	}
}

func deleteUserHandler(svc *service.UserService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /users/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		if err := svc.Delete(ctx, PrincipalFromContext(ctx).ID, id); err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, nil, "User deleted successfully")
	}
}
