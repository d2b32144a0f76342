package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-management-api/internal/service"
	"project-management-api/internal/transport/http/dto"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler { return &TaskHandler{svc: svc} }

func (h *TaskHandler) Mount(g Groups) {
	create := func(c *gin.Context, in *service.CreateTaskInput) (int, any, error) {
		t, err := h.svc.Create(c.Request.Context(), *in)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, gin.H{"message": "Task created successfully", "task": dto.FromTask(t)}, nil
	}

	// 路径上的项目 id 覆盖 body 里的 project_id
	RegisterAction(g.Authed, Action[service.CreateTaskInput]{
		Method: http.MethodPost, Path: "/projects/:id/tasks", Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.CreateTaskInput) (int, any, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return 0, nil, err
			}
			in.ProjectID = id
			return create(c, in)
		},
	})

	RegisterAction(g.Authed, Action[service.CreateTaskInput]{
		Method: http.MethodPost, Path: "/tasks", Binder: BindJSON,
		Handler: create,
	})

	RegisterAction(g.Public, Action[service.ListTasksInput]{
		Method: http.MethodGet, Path: "/projects/:id/tasks", Binder: BindQuery,
		Handler: func(c *gin.Context, in *service.ListTasksInput) (int, any, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return 0, nil, err
			}
			page, err := h.svc.ListByProject(c.Request.Context(), id, *in)
			if err != nil {
				return 0, nil, err
			}
			body := list("tasks", dto.Tasks(page.Items), len(page.Items), page.Total, page.Limit, page.Offset)
			body["project_id"] = id
			return http.StatusOK, body, nil
		},
	})

	RegisterAction(g.Authed, Action[service.ListTasksInput]{
		Method: http.MethodGet, Path: "/tasks", Binder: BindQuery,
		Handler: func(c *gin.Context, in *service.ListTasksInput) (int, any, error) {
			page, err := h.svc.List(c.Request.Context(), *in)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusOK, list("tasks", dto.Tasks(page.Items), len(page.Items), page.Total, page.Limit, page.Offset), nil
		},
	})

	RegisterAction(g.Public, Action[struct{}]{
		Method: http.MethodGet, Path: "/tasks/:id", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (int, any, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return 0, nil, err
			}
			t, err := h.svc.Get(c.Request.Context(), id)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusOK, gin.H{"task": dto.FromTask(t)}, nil
		},
	})

	RegisterAction(g.Authed, Action[service.UpdateTaskInput]{
		Method: http.MethodPut, Path: "/tasks/:id", Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.UpdateTaskInput) (int, any, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return 0, nil, err
			}
			t, err := h.svc.Update(c.Request.Context(), id, *in)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusOK, gin.H{"message": "Task updated successfully", "task": dto.FromTask(t)}, nil
		},
	})

	RegisterAction(g.Authed, Action[struct{}]{
		Method: http.MethodDelete, Path: "/tasks/:id", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (int, any, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return 0, nil, err
			}
			if err := h.svc.Delete(c.Request.Context(), id); err != nil {
				return 0, nil, err
			}
			return http.StatusOK, gin.H{"message": "Task deleted successfully"}, nil
		},
	})
}
