package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-management-api/internal/service"
	"project-management-api/internal/transport/http/dto"
	mdw "project-management-api/internal/transport/http/middleware"
)

type ProjectHandler struct {
	svc *service.ProjectService
}

func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

func (h *ProjectHandler) Mount(g Groups) {
	RegisterAction(g.Manager, Action[service.CreateProjectInput]{
		Method: http.MethodPost, Path: "/projects", Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.CreateProjectInput) (int, any, error) {
			p, err := h.svc.Create(c.Request.Context(), mdw.CurrentUser(c), *in)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusCreated, gin.H{"message": "Project created successfully", "project": dto.FromProject(p)}, nil
		},
	})

	RegisterAction(g.Public, Action[service.ListProjectsInput]{
		Method: http.MethodGet, Path: "/projects", Binder: BindQuery,
		Handler: func(c *gin.Context, in *service.ListProjectsInput) (int, any, error) {
			in.IncludeTasks = flag(c, "include_tasks")
			page, err := h.svc.List(c.Request.Context(), *in)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusOK, list("projects", dto.ProjectViews(page.Items), len(page.Items), page.Total, page.Limit, page.Offset), nil
		},
	})

	RegisterAction(g.Public, Action[struct{}]{
		Method: http.MethodGet, Path: "/projects/:id", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (int, any, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return 0, nil, err
			}
			v, err := h.svc.Get(c.Request.Context(), id, flag(c, "include_tasks"))
			if err != nil {
				return 0, nil, err
			}
			return http.StatusOK, gin.H{"project": dto.FromProjectView(v)}, nil
		},
	})

	RegisterAction(g.Manager, Action[service.UpdateProjectInput]{
		Method: http.MethodPut, Path: "/projects/:id", Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.UpdateProjectInput) (int, any, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return 0, nil, err
			}
			p, err := h.svc.Update(c.Request.Context(), id, *in)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusOK, gin.H{"message": "Project updated successfully", "project": dto.FromProject(p)}, nil
		},
	})

	RegisterAction(g.Manager, Action[struct{}]{
		Method: http.MethodDelete, Path: "/projects/:id", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (int, any, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return 0, nil, err
			}
			if err := h.svc.Delete(c.Request.Context(), id); err != nil {
				return 0, nil, err
			}
			return http.StatusOK, gin.H{"message": "Project deleted successfully"}, nil
		},
	})
}
