package admin

import (
	"errors"

	"github.com/realcpa-hub/internal/authz"
	"github.com/realcpa-hub/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListAuthzRoles GET /admin/authz/roles
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	response.Success(c, gin.H{"roles": roles})
}

// GetAuthzRolePolicies GET /admin/authz/roles/:role/policies，包含继承所得
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role := c.Param("role")
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	subject, _ := authz.NormalizeRole(role)
	response.Success(c, gin.H{"role": subject, "policies": policies})
}

func respondAuthzError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrRoleRequired):
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
	case errors.Is(err, authz.ErrUnavailable):
		respondError(c, response.CodeServiceUnavailable, "error.internal", err)
	default:
		respondError(c, response.CodeInternal, "error.internal", err)
	}
}
