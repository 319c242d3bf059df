package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/internal/app/service"
	apperrors "github.com/creamloft/creamloft-backend/internal/errors"
	"github.com/creamloft/creamloft-backend/internal/middleware"
	ws "github.com/creamloft/creamloft-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/xuri/excelize/v2"
)

// dateParamLayout is the format of date_from / date_to query parameters.
const dateParamLayout = "2006-01-02"

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Auth happens in middleware before the upgrade
		return true
	},
}

type AdminOrderController struct {
	orderService service.OrderService
	hub          *ws.Hub
}

func NewAdminOrderController(orderService service.OrderService, hub *ws.Hub) *AdminOrderController {
	return &AdminOrderController{
		orderService: orderService,
		hub:          hub,
	}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetOrders lists all orders, optionally filtered by status and date range
// GET /api/v1/admin/orders?status=pending&date_from=2026-01-01&date_to=2026-01-31
func (ctrl *AdminOrderController) GetOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter, ok := parseOrderFilter(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.ListOrders(filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrderStatus) {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
			return
		}
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"status": filter.Status,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder returns any order with its items
// GET /api/v1/admin/orders/:id
func (ctrl *AdminOrderController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "fetch order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// UpdateOrderStatus moves an order along the fulfilment pipeline
// PUT /api/v1/admin/orders/:id/status
func (ctrl *AdminOrderController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	order, err := ctrl.orderService.UpdateOrderStatus(orderID, model.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		case errors.Is(err, service.ErrInvalidOrderStatus):
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
		case errors.Is(err, service.ErrInvalidTransition):
			apperrors.BadRequest(c, apperrors.OrderInvalidTransition, "Status transition not allowed")
		default:
			log.Error("Failed to update order status", err, map[string]interface{}{
				"order_id": orderID,
				"status":   req.Status,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update order status")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"order":   order,
	})
}

// ExportOrders streams the filtered order list as an xlsx workbook
// GET /api/v1/admin/orders/export
func (ctrl *AdminOrderController) ExportOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter, ok := parseOrderFilter(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.ListOrders(filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrderStatus) {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
			return
		}
		log.Error("Failed to fetch orders for export", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "export orders")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Order ID", "User ID", "Status", "Payment Status", "Total Amount", "Items", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, order := range orders {
		values := []interface{}{
			order.ID,
			order.UserID,
			string(order.Status),
			string(order.PaymentStatus),
			order.TotalAmount,
			len(order.OrderItems),
			order.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := f.Write(c.Writer); err != nil {
		log.Error("Failed to write export workbook", err, nil)
	}
}

// OrderFeed upgrades the connection and attaches it to the order event hub
// GET /api/v1/admin/orders/feed
func (ctrl *AdminOrderController) OrderFeed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	conn, err := feedUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade order feed connection", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	client := &ws.Client{
		Hub:    ctrl.hub,
		Conn:   &ws.Conn{Conn: conn},
		UserID: userID,
		Send:   make(chan []byte, 256),
	}
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func parseOrderFilter(c *gin.Context) (repository.OrderFilter, bool) {
	filter := repository.OrderFilter{Status: c.Query("status")}

	if raw := c.Query("date_from"); raw != "" {
		t, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid date_from, expected YYYY-MM-DD")
			return filter, false
		}
		filter.DateFrom = &t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid date_to, expected YYYY-MM-DD")
			return filter, false
		}
		// Inclusive end of day
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &end
	}

	return filter, true
}
