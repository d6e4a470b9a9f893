package handler

import (
	"net/http"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/service"
)

// ============================================================
// Leads
// ============================================================

func listLeadsHandler(svc *service.LeadService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /leads")
		defer span.End()

		converted, err := queryBool(r, "is_converted")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		leads, err := svc.List(ctx, domain.LeadFilter{IsConverted: converted})
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeList(w, leads)
	}
}

func listLeadsByStatusHandler(svc *service.LeadService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /leads/status/{statusId}")
		defer span.End()

		statusID, err := pathID(r, "statusId")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		leads, err := svc.ListByStatus(ctx, statusID)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeList(w, leads)
	}
}

func getLeadHandler(svc *service.LeadService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /leads/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		lead, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, lead, "")
	}
}

func createLeadHandler(svc *service.LeadService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /leads")
		defer span.End()

		var req domain.CreateLeadRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		lead, err := svc.Create(ctx, PrincipalFromContext(ctx).ID, &req)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusCreated, lead, "Lead created successfully")
	}
}

func updateLeadHandler(svc *service.LeadService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /leads/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		var req domain.UpdateLeadRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		lead, err := svc.Update(ctx, PrincipalFromContext(ctx).ID, id, &req)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, lead, "Lead updated successfully")
	}
}

func deleteLeadHandler(svc *service.LeadService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /leads/{id}")
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
		writeData(w, http.StatusOK, nil, "Lead deleted successfully")
	}
}

func convertLeadHandler(svc *service.LeadService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /leads/{id}/convert")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		lead, err := svc.ConvertLead(ctx, PrincipalFromContext(ctx).ID, id)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, lead, "Lead converted to customer successfully")
	}
}
