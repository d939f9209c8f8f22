package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/soremed/portal/internal/api/view"
	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

const (
	clientPageSize = 12
	staffPageSize  = 10
	maxPageSize    = 100
)

// CatalogHandler serves the medication catalog to every layout.
type CatalogHandler struct {
	catalog ports.CatalogAPI
}

func NewCatalogHandler(catalog ports.CatalogAPI) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type medicationRequest struct {
	Name         string  `json:"name"         validate:"required"`
	Description  string  `json:"description"`
	Dosage       string  `json:"dosage"`
	Form         string  `json:"form"`
	Manufacturer string  `json:"manufacturer"`
	Price        float64 `json:"price"        validate:"gte=0"`
	Quantity     int     `json:"quantity"     validate:"gte=0"`
}

func (r medicationRequest) toDomain() domain.Medication {
	return domain.Medication{
		Name:         strings.TrimSpace(r.Name),
		Description:  r.Description,
		Dosage:       r.Dosage,
		Form:         r.Form,
		Manufacturer: r.Manufacturer,
		Price:        r.Price,
		Quantity:     r.Quantity,
	}
}

func medicationQuery(c echo.Context, defSize int) domain.MedicationQuery {
	size := queryInt(c, "size", defSize)
	if size == 0 || size > maxPageSize {
		size = defSize
	}
	return domain.MedicationQuery{
		Search:      strings.TrimSpace(c.QueryParam("search")),
		MinQuantity: queryInt(c, "minQuantity", 0),
		Page:        queryInt(c, "page", 0),
		Size:        size,
	}
}

// Home handles GET /, the client catalog search.
//
// @Summary      Client catalog
// @Tags         client
// @Produce      json
// @Param        search       query     string  false  "Name filter"
// @Param        minQuantity  query     int     false  "Minimum stock"
// @Param        page         query     int     false  "0-based page"
// @Param        size         query     int     false  "Page size (default 12)"
// @Success      200          {object}  view.Page
// @Failure      302
// @Router       / [get]
func (h *CatalogHandler) Home(c echo.Context) error {
	page, err := h.catalog.ListMedications(c.Request().Context(), medicationQuery(c, clientPageSize))
	if err != nil {
		return err
	}
	return render(c, view.LayoutClient, "Catalog", page)
}

// AdminList handles GET /admin/catalog.
//
// @Summary      Back-office catalog
// @Tags         admin
// @Produce      json
// @Param        search  query     string  false  "Name filter"
// @Param        page    query     int     false  "0-based page"
// @Success      200     {object}  view.Page
// @Router       /admin/catalog [get]
func (h *CatalogHandler) AdminList(c echo.Context) error {
	page, err := h.catalog.ListMedications(c.Request().Context(), medicationQuery(c, staffPageSize))
	if err != nil {
		return err
	}
	return render(c, view.LayoutAdmin, "Catalog", page)
}

// AchatList handles GET /achat/catalog.
//
// @Summary      Purchasing catalog
// @Tags         achat
// @Produce      json
// @Success      200  {object}  view.Page
// @Router       /achat/catalog [get]
func (h *CatalogHandler) AchatList(c echo.Context) error {
	page, err := h.catalog.ListMedications(c.Request().Context(), medicationQuery(c, staffPageSize))
	if err != nil {
		return err
	}
	return render(c, view.LayoutServiceAchat, "Catalog", page)
}

// Create handles POST /admin/catalog.
//
// @Summary      Add a medication
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      medicationRequest  true  "Medication"
// @Success      201   {object}  domain.Medication
// @Failure      422   {object}  errorResponse
// @Router       /admin/catalog [post]
func (h *CatalogHandler) Create(c echo.Context) error {
	var req medicationRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	m, err := h.catalog.CreateMedication(c.Request().Context(), req.toDomain())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

// Update handles PUT /admin/catalog/:id.
//
// @Summary      Edit a medication
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Medication id"
// @Param        body  body      medicationRequest  true  "Medication"
// @Success      200   {object}  domain.Medication
// @Failure      404   {object}  errorResponse
// @Router       /admin/catalog/{id} [put]
func (h *CatalogHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req medicationRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	m, err := h.catalog.UpdateMedication(c.Request().Context(), id, req.toDomain())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// Delete handles DELETE /admin/catalog/:id.
//
// @Summary      Remove a medication
// @Tags         admin
// @Param        id   path  int  true  "Medication id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /admin/catalog/{id} [delete]
func (h *CatalogHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteMedication(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
