package controllers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"medcart/models"
	"medcart/utils"

	"github.com/gin-gonic/gin"
)

type CatalogService interface {
	List(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogItem, int, error)
	Get(ctx context.Context, id string) (*models.CatalogItem, error)
	Create(ctx context.Context, req models.CreateCatalogItemRequest, image *multipart.FileHeader) (*models.CatalogItem, error)
	Update(ctx context.Context, id string, req models.UpdateCatalogItemRequest, image *multipart.FileHeader) (*models.CatalogItem, error)
	Delete(ctx context.Context, id string) error
}

type CatalogController struct {
	catalog       CatalogService
	maxUploadSize int64
}

func NewCatalogController(catalog CatalogService, maxUploadSize int64) *CatalogController {
	return &CatalogController{catalog: catalog, maxUploadSize: maxUploadSize}
}

// ListCatalog godoc
// @Summary List catalog items
// @Description Paginated list of active products and medicines
// @Tags Catalog
// @Produce json
// @Param kind query string false "product or medicine" Enums(product, medicine)
// @Param search query string false "Search by name"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(12)
// @Success 200 {object} models.HATEOASResponse{data=[]models.CatalogItem}
// @Router /api/catalog [get]
func (ctrl *CatalogController) ListCatalog(c *gin.Context) {
	page, limit := utils.GetPaginationParams(c, 12)
	filter := models.CatalogFilter{
		Kind:   c.Query("kind"),
		Search: strings.TrimSpace(c.Query("search")),
		Page:   page,
		Limit:  limit,
	}

	items, total, err := ctrl.catalog.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.BuildPaginatedResponse(c, "Catalog retrieved successfully", items, page, limit, total))
}

// GetCatalogItem godoc
// @Summary Get catalog item
// @Tags Catalog
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} models.Response{data=models.CatalogItem}
// @Failure 404 {object} models.ErrorResponse
// @Router /api/catalog/{id} [get]
func (ctrl *CatalogController) GetCatalogItem(c *gin.Context) {
	item, err := ctrl.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Item retrieved successfully", item)
}

// CreateCatalogItem godoc
// @Summary Create catalog item
// @Tags Admin
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param kind formData string true "product or medicine"
// @Param name formData string true "Name"
// @Param description formData string false "Description"
// @Param price formData number true "Price"
// @Param stock formData int false "Stock"
// @Param image formData file false "Image"
// @Success 201 {object} models.Response{data=models.CatalogItem}
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/catalog [post]
func (ctrl *CatalogController) CreateCatalogItem(c *gin.Context) {
	var req models.CreateCatalogItemRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	image, ok := ctrl.formImage(c)
	if !ok {
		return
	}

	item, err := ctrl.catalog.Create(c.Request.Context(), req, image)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, "Item created successfully", item)
}

// UpdateCatalogItem godoc
// @Summary Update catalog item
// @Tags Admin
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Item ID"
// @Param name formData string false "Name"
// @Param description formData string false "Description"
// @Param price formData number false "Price"
// @Param stock formData int false "Stock"
// @Param is_active formData bool false "Active"
// @Param image formData file false "Image"
// @Success 200 {object} models.Response{data=models.CatalogItem}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/catalog/{id} [patch]
func (ctrl *CatalogController) UpdateCatalogItem(c *gin.Context) {
	var req models.UpdateCatalogItemRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	image, ok := ctrl.formImage(c)
	if !ok {
		return
	}

	item, err := ctrl.catalog.Update(c.Request.Context(), c.Param("id"), req, image)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Item updated successfully", item)
}

// DeleteCatalogItem godoc
// @Summary Deactivate catalog item
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/catalog/{id} [delete]
func (ctrl *CatalogController) DeleteCatalogItem(c *gin.Context) {
	if err := ctrl.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Item deleted successfully", nil)
}

// formImage returns the optional "image" upload. ok is false once a response has been written.
func (ctrl *CatalogController) formImage(c *gin.Context) (*multipart.FileHeader, bool) {
	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, true
	}
	if err != nil {
		bindError(c, err)
		return nil, false
	}
	if err := utils.ValidateImage(file, ctrl.maxUploadSize); err != nil {
		respondError(c, err)
		return nil, false
	}
	return file, true
}
