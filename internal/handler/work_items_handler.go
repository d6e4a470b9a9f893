package handler

import (
	"net/http"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/service"
)

// ============================================================
// Work items
// ============================================================

func listWorkItemsHandler(svc *service.WorkItemService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /work-items")
		defer span.End()

		var filter domain.WorkItemFilter
		if err := bindQueryIDs(r,
			queryParam{"customer_id", &filter.CustomerIDs},
			queryParam{"assigned_to", &filter.AssignedToIDs},
			queryParam{"status_id", &filter.StatusIDs},
		); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		items, err := svc.List(ctx, filter)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeList(w, items)
	}
}

func filterWorkItemsHandler(svc *service.WorkItemService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /work-items/filter")
		defer span.End()

		var filter domain.WorkItemFilter
		if err := decodeBody(r, &filter); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		items, err := svc.List(ctx, filter)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeList(w, items)
	}
}

func getWorkItemHandler(svc *service.WorkItemService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /work-items/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		item, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, item, "")
	}
}

func createWorkItemHandler(svc *service.WorkItemService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /work-items")
		defer span.End()

		var req domain.CreateWorkItemRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		item, err := svc.Create(ctx, PrincipalFromContext(ctx).ID, &req)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusCreated, item, "Work item created successfully")
	}
}

func updateWorkItemHandler(svc *service.WorkItemService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /work-items/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		var req domain.UpdateWorkItemRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		item, err := svc.Update(ctx, PrincipalFromContext(ctx).ID, id, &req)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, item, "Work item updated successfully")
	}
}

func deleteWorkItemHandler(svc *service.WorkItemService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /work-items/{id}")
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
		writeData(w, http.StatusOK, nil, "Work item deleted successfully")
	}
}
