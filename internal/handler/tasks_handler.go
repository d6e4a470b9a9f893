package handler

import (
	"net/http"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/service"
)

// ============================================================
// Tasks
// ============================================================

func listTasksHandler(svc *service.TaskService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /tasks")
		defer span.End()

		var filter domain.TaskFilter
		if err := bindQueryIDs(r,
			queryParam{"customer_id", &filter.CustomerIDs},
			queryParam{"work_item_id", &filter.WorkItemIDs},
			queryParam{"assigned_to", &filter.AssignedToIDs},
			queryParam{"status_id", &filter.StatusIDs},
		); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		tasks, err := svc.List(ctx, filter)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeList(w, tasks)
	}
}

func filterTasksHandler(svc *service.TaskService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /tasks/filter")
		defer span.End()

		var filter domain.TaskFilter
		if err := decodeBody(r, &filter); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		tasks, err := svc.List(ctx, filter)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeList(w, tasks)
	}
}

func getTaskHandler(svc *service.TaskService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /tasks/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		task, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, task, "")
	}
}

func createTaskHandler(svc *service.TaskService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /tasks")
		defer span.End()

		var req domain.CreateTaskRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		task, err := svc.Create(ctx, PrincipalFromContext(ctx).ID, &req)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusCreated, task, "Task created successfully")
	}
}

func updateTaskHandler(svc *service.TaskService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /tasks/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		var req domain.UpdateTaskRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, r, err, b)
			return
		}

		task, err := svc.Update(ctx, PrincipalFromContext(ctx).ID, id, &req)
		if err != nil {
			handleServiceError(w, r, err, b)
			return
		}
		writeData(w, http.StatusOK, task, "Task updated successfully")
	}
}

func deleteTaskHandler(svc *service.TaskService, b *boundary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /tasks/{id}")
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
		writeData(w, http.StatusOK, nil, "Task deleted successfully")
	}
}
