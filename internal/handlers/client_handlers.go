package handlers

import (
	"log"
	"net/http"

	"oficinagil/internal/common"
	"oficinagil/internal/models"
	"oficinagil/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ClientHandlers handles workshop client CRUD.
type ClientHandlers struct {
	clientRepo repositories.ClientRepository
}

func NewClientHandlers(clientRepo repositories.ClientRepository) *ClientHandlers {
	return &ClientHandlers{clientRepo: clientRepo}
}

type clientRequest struct {
	Name     string  `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Document *string `json:"document"`
	Notes    *string `json:"notes"`
}

func (h *ClientHandlers) ListClients(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.ValidatePaginationParams(intQueryParam(c, "limit"), intQueryParam(c, "offset"))
	clients, err := h.clientRepo.List(ctx, tenantID, limit, offset)
	if err != nil {
		log.Printf("failed to list clients for tenant %s: %v", tenantID, err)
		return common.SendServerError(c, "Failed to list clients")
	}
	return c.JSON(http.StatusOK, clients)
}

func (h *ClientHandlers) CreateClient(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	client := &models.Client{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Document: req.Document,
		Notes:    req.Notes,
	}
	if err := h.clientRepo.Create(ctx, client); err != nil {
		log.Printf("failed to create client for tenant %s: %v", tenantID, err)
		return common.SendServerError(c, "Failed to create client")
	}
	return c.JSON(http.StatusCreated, client)
}

func (h *ClientHandlers) GetClient(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	client, err := h.clientRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return common.SendNotFoundError(c, "Client")
	}
	return c.JSON(http.StatusOK, client)
}

func (h *ClientHandlers) UpdateClient(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	client, err := h.clientRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return common.SendNotFoundError(c, "Client")
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	client.Name = req.Name
	client.Phone = req.Phone
	client.Email = req.Email
	client.Document = req.Document
	client.Notes = req.Notes
	if err := h.clientRepo.Update(ctx, client); err != nil {
		log.Printf("failed to update client %s: %v", id, err)
		return common.SendServerError(c, "Failed to update client")
	}
	return c.JSON(http.StatusOK, client)
}

func (h *ClientHandlers) DeleteClient(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.clientRepo.Delete(ctx, tenantID, id); err != nil {
		log.Printf("failed to delete client %s: %v", id, err)
		return common.SendServerError(c, "Failed to delete client")
	}
	return c.NoContent(http.StatusNoContent)
}
