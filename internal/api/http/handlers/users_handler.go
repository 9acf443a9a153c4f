package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/employee-directory/internal/api/dto"
	"github.com/spec-kit/employee-directory/internal/auth"
	"github.com/spec-kit/employee-directory/internal/domain"
	"github.com/spec-kit/employee-directory/internal/service"
	apperrors "github.com/spec-kit/employee-directory/pkg/util/errorutil"
)

// defaultListLimit is used when the limit query parameter is absent.
const defaultListLimit = 50

// UsersHandler exposes the directory and lifecycle endpoints.
type UsersHandler struct {
	directory *service.DirectoryService
	lifecycle *service.LifecycleService
	auth      *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(directory *service.DirectoryService, lifecycle *service.LifecycleService, authService *service.AuthService) *UsersHandler {
	return &UsersHandler{directory: directory, lifecycle: lifecycle, auth: authService}
}

// List handles GET /users. Public by design.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	from := c.QueryInt("from", 0)
	limit := c.QueryInt("limit", defaultListLimit)

	users, err := h.directory.List(c.UserContext(), from, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": users})
}

// Get handles GET /user/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	principal, targetID, err := principalAndTarget(c)
	if err != nil {
		return err
	}

	profile, err := h.directory.Profile(c.UserContext(), principal.ID, targetID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profile})
}

// ChangePassword handles PATCH /pwd/:id.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	principal, targetID, err := principalAndTarget(c)
	if err != nil {
		return err
	}

	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	actor := service.Actor{ID: principal.ID, Role: principal.Role}
	if err := h.auth.ChangePassword(c.UserContext(), actor, targetID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password Changed"})
}

// Add handles POST /add.
func (h *UsersHandler) Add(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("Forbidden")
	}

	var req dto.AddUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	dateOfBirth, err := dto.ParseDate(req.DateOfBirth)
	if err != nil {
		return apperrors.NewValidationError("invalid date_of_birth", nil)
	}

	input := service.CreateEmployeeInput{
		Username:    req.Username,
		Email:       req.Email,
		Role:        domain.Role(req.Role),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Title:       req.Title,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: dateOfBirth,
	}
	if req.Options != nil {
		input.Options = service.RoleOptions{
			IsPrimary:   req.Options.IsPrimary,
			IsSuper:     req.Options.IsSuper,
			ReportingTo: req.Options.ReportingTo,
		}
	}

	actor := service.Actor{ID: principal.ID, Role: principal.Role}
	password, err := h.lifecycle.CreateEmployee(c.UserContext(), actor, input)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User Created",
		"data":    fiber.Map{"initial_password": password},
	})
}

// Edit handles PATCH /user/:id for both detail and scope changes.
func (h *UsersHandler) Edit(c *fiber.Ctx) error {
	principal, targetID, err := principalAndTarget(c)
	if err != nil {
		return err
	}

	var req dto.EditUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	actor := service.Actor{ID: principal.ID, Role: principal.Role}

	switch req.ChangeType {
	case "detail":
		patch, err := detailPatch(req.Detail)
		if err != nil {
			return err
		}
		if err := h.lifecycle.EditDetail(c.UserContext(), actor, targetID, patch); err != nil {
			return err
		}
	case "scope":
		err := h.lifecycle.EditScope(c.UserContext(), actor, targetID, domain.Role(req.Scope.To), req.Scope.ReportingTo)
		if errors.Is(err, service.ErrNoChange) {
			return c.SendStatus(http.StatusNotModified)
		}
		if err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{"message": "User Edited"})
}

// Delete handles DELETE /user/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	principal, targetID, err := principalAndTarget(c)
	if err != nil {
		return err
	}

	actor := service.Actor{ID: principal.ID, Role: principal.Role}
	if err := h.lifecycle.DeleteEmployee(c.UserContext(), actor, targetID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User Deleted"})
}

func principalAndTarget(c *fiber.Ctx) (*auth.Principal, int64, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, 0, apperrors.NewForbidden("Forbidden")
	}

	targetID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return nil, 0, apperrors.NewValidationError("invalid user id", nil)
	}
	return principal, targetID, nil
}

func detailPatch(change *dto.DetailChange) (domain.DetailPatch, error) {
	patch := domain.DetailPatch{
		FirstName:   change.FirstName,
		LastName:    change.LastName,
		Title:       change.Title,
		PhoneNumber: change.PhoneNumber,
		Email:       change.Email,
	}
	if change.DateOfBirth != nil {
		dateOfBirth, err := dto.ParseDate(*change.DateOfBirth)
		if err != nil {
			return domain.DetailPatch{}, apperrors.NewValidationError("invalid date_of_birth", nil)
		}
		patch.DateOfBirth = &dateOfBirth
	}
	return patch, nil
}
