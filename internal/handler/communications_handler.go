package handler

import (
	"net/http"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/service"
)

// ============================================================
// Communications
// ============================================================

func listCommunicationsHandler(svc *service.CommunicationService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /communications")
		defer span.End()

		var filter domain.CommunicationFilter
		if err := bindQueryIDs(r,
			queryParam{"lead_id", &filter.LeadIDs},
			queryParam{"created_by", &filter.CreatedByIDs},
		); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		communications, err := svc.List(ctx, filter)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeList(w, communications)
	}
}

func filterCommunicationsHandler(svc *service.CommunicationService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /communications/filter")
		defer span.End()

		var filter domain.CommunicationFilter
		if err := decodeBody(r, &filter); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		communications, err := svc.List(ctx, filter)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeList(w, communications)
	}
}

func getCommunicationHandler(svc *service.CommunicationService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /communications/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		communication, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, communication, "")
	}
}

func createCommunicationHandler(svc *service.CommunicationService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /communications")
		defer span.End()

		var req domain.CreateCommunicationRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		communication, err := svc.Create(ctx, PrincipalFromContext(ctx).ID, &req)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusCreated, communication, "Communication created successfully")
	}
}

func updateCommunicationHandler(svc *service.CommunicationService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /communications/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		var req domain.UpdateCommunicationRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		communication, err := svc.Update(ctx, PrincipalFromContext(ctx).ID, id, &req)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, communication, "Communication updated successfully")
	}
}

func deleteCommunicationHandler(svc *service.CommunicationService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /communications/{id}")
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
		writeData(w, http.StatusOK, nil, "Communication deleted successfully")
	}
}
