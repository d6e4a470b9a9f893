package handler

import (
	"net/http"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/service"
)

// ============================================================
// Authentication
// ============================================================

func signupHandler(authSvc *service.AuthService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /auth/signup")
		defer span.End()

		var req domain.SignupRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		resp, err := authSvc.Signup(ctx, &req)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		writeData(w, http.StatusCreated, resp, "User registered successfully")
	}
}

func loginHandler(authSvc *service.AuthService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /auth/login")
		defer span.End()

		var req domain.LoginRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		resp, err := authSvc.Login(ctx, &req)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		writeData(w, http.StatusOK, resp, "Login successful")
	}
}
