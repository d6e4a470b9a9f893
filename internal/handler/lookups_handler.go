package handler

import (
	"net/http"

	"github.com/boddenberg/crm-api-go/internal/port"
	"github.com/boddenberg/crm-api-go/internal/service"
)

// ============================================================
// Roles & reference data
// ============================================================

func listRolesHandler(svc *service.LookupService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /roles")
		defer span.End()

		roles, err := svc.ListRoles(ctx)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeList(w, roles)
	}
}

func getRoleHandler(svc *service.LookupService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /roles/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		role, err := svc.GetRole(ctx, id)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, role, "")
	}
}

func listLeadStatusesHandler(svc *service.LookupService, b *boundary) http.HandlerFunc {
	return listLookupHandler(svc, b, port.LeadStatuses, "GET /lead-statuses")
}

func getLeadStatusHandler(svc *service.LookupService, b *boundary) http.HandlerFunc {
	return getLookupHandler(svc, b, port.LeadStatuses, "GET /lead-statuses/{id}")
}

func listSourcesHandler(svc *service.LookupService, b *boundary) http.HandlerFunc {
	return listLookupHandler(svc, b, port.Sources, "GET /sources")
}

func getSourceHandler(svc *service.LookupService, b *boundary) http.HandlerFunc {
	return getLookupHandler(svc, b, port.Sources, "GET /sources/{id}")
}

func listWorkStatusesHandler(svc *service.LookupService, b *boundary) http.HandlerFunc {
	return listLookupHandler(svc, b, port.WorkStatuses, "GET /work-statuses")
}

func listLookupHandler(svc *service.LookupService, b *boundary, table port.LookupTable, spanName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), spanName)
		defer span.End()

		rows, err := svc.List(ctx, table)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeList(w, rows)
	}
}

func getLookupHandler(svc *service.LookupService, b *boundary, table port.LookupTable, spanName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), spanName)
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		row, err := svc.Get(ctx, table, id)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, row, "")
	}
}
