package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"medcart/models"
	"medcart/utils"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type AdminService interface {
	Dashboard(ctx context.Context) (*models.DashboardSummary, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error)
	ListCustomers(ctx context.Context, filter models.CustomerFilter) ([]models.User, int, error)
}

type AdminController struct {
	admin AdminService
}

func NewAdminController(admin AdminService) *AdminController {
	return &AdminController{admin: admin}
}

// GetDashboard godoc
// @Summary Admin dashboard
// @Description Order counts by status, revenue from paid orders, and customer count
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.DashboardSummary}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/dashboard [get]
func (ctrl *AdminController) GetDashboard(c *gin.Context) {
	summary, err := ctrl.admin.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Dashboard retrieved successfully", summary)
}

// ListOrders godoc
// @Summary List orders
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "Order status"
// @Param search query string false "Search by order id or customer"
// @Param start_date query string false "From date (YYYY-MM-DD)"
// @Param end_date query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} models.HATEOASResponse{data=[]models.Order}
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/orders [get]
func (ctrl *AdminController) ListOrders(c *gin.Context) {
	page, limit := utils.GetPaginationParams(c, 10)
	filter := models.OrderFilter{
		Status: c.Query("status"),
		Search: strings.TrimSpace(c.Query("search")),
		Page:   page,
		Limit:  limit,
	}

	if s := c.Query("start_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid start_date format. Use YYYY-MM-DD", nil)
			return
		}
		filter.StartDate = &t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid end_date format. Use YYYY-MM-DD", nil)
			return
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &end
	}

	orders, total, err := ctrl.admin.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.BuildPaginatedResponse(c, "Orders retrieved successfully", orders, page, limit, total))
}

// GetOrder godoc
// @Summary Get order
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/orders/{id} [get]
func (ctrl *AdminController) GetOrder(c *gin.Context) {
	order, err := ctrl.admin.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Order retrieved successfully", order)
}

// UpdateOrderStatus godoc
// @Summary Update order status
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body models.UpdateOrderStatusRequest true "Status"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/orders/{id}/status [patch]
func (ctrl *AdminController) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := ctrl.admin.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Order status updated successfully", order)
}

// ListCustomers godoc
// @Summary List customers
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param search query string false "Search by name or email"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} models.HATEOASResponse{data=[]models.User}
// @Router /admin/customers [get]
func (ctrl *AdminController) ListCustomers(c *gin.Context) {
	page, limit := utils.GetPaginationParams(c, 10)
	filter := models.CustomerFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Page:   page,
		Limit:  limit,
	}

	customers, total, err := ctrl.admin.ListCustomers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.BuildPaginatedResponse(c, "Customers retrieved successfully", customers, page, limit, total))
}
