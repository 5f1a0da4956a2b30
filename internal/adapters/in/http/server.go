// Package http is the inbound HTTP facade. Writes are translated into
// fire-and-forget commands and acknowledged with 202 before any entity has
// processed them; reads are served from the published lane state.
package http

import (
	"errors"
	"net/http"

	"retail/internal/core/application/usecases/commands"
	"retail/internal/core/application/usecases/queries"
	"retail/internal/core/domain/model/kernel"
	"retail/internal/core/domain/model/order"
	"retail/internal/core/ports"
	"retail/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and the command and query sides.
type Server struct {
	sender ports.CommandSender

	getCustomerStatusHandler queries.GetCustomerStatusQueryHandler
	getStoreStatusHandler    queries.GetStoreStatusQueryHandler
	getOrderStatusHandler    queries.GetOrderStatusQueryHandler
	getOrderHistoryHandler   queries.GetOrderHistoryQueryHandler
}

// NewServer creates a new HTTP server over the given command sender and query
// handlers.
func NewServer(
	sender ports.CommandSender,
	getCustomerStatusHandler queries.GetCustomerStatusQueryHandler,
	getStoreStatusHandler queries.GetStoreStatusQueryHandler,
	getOrderStatusHandler queries.GetOrderStatusQueryHandler,
	getOrderHistoryHandler queries.GetOrderHistoryQueryHandler,
) *Server {
	return &Server{
		sender:                   sender,
		getCustomerStatusHandler: getCustomerStatusHandler,
		getStoreStatusHandler:    getStoreStatusHandler,
		getOrderStatusHandler:    getOrderStatusHandler,
		getOrderHistoryHandler:   getOrderHistoryHandler,
	}
}

// RegisterRoutes attaches all endpoints to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	e.POST("/customers/:id/orders", s.PlaceOrder)
	e.GET("/customers/:id/status", s.GetCustomerStatus)

	e.POST("/orders/:id/advance", s.AdvanceOrder)
	e.GET("/orders/:id/status", s.GetOrderStatus)
	e.GET("/orders/:id/history", s.GetOrderHistory)

	e.GET("/store/status", s.GetStoreStatus)
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type placeOrderRequest struct {
	OrderID  string         `json:"orderId,omitempty"`
	Products map[string]int `json:"products"`
}

type placeOrderResponse struct {
	OrderID string `json:"orderId"`
}

type advanceOrderRequest struct {
	Status string `json:"status,omitempty"`
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// PlaceOrder handles POST /customers/:id/orders. The placement is validated
// up front, then dispatched to the customer entity and acknowledged with 202:
// the caller observes the outcome through the status endpoints.
func (s *Server) PlaceOrder(ctx echo.Context) error {
	customer, err := kernel.NewCustomerAddress(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid customer id: "+err.Error())
	}

	var request placeOrderRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewPlaceOrderCommand(request.Products)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	orderAddr := kernel.NewOrderAddress()
	if request.OrderID != "" {
		orderAddr, err = kernel.NewAddress(kernel.KindOrder, request.OrderID)
		if err != nil {
			return badRequest(ctx, "Invalid order id: "+err.Error())
		}
	}

	s.sender.Send(customer, cmd.WithOrder(orderAddr))

	return ctx.JSON(http.StatusAccepted, placeOrderResponse{OrderID: orderAddr.ID()})
}

// AdvanceOrder handles POST /orders/:id/advance. Without a body the order
// advances to its next lifecycle status; with an explicit status it
// transitions directly to it.
func (s *Server) AdvanceOrder(ctx echo.Context) error {
	orderAddr, err := kernel.NewAddress(kernel.KindOrder, ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id: "+err.Error())
	}

	var request advanceOrderRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd := commands.NewUpdateOrderCommand()
	if request.Status != "" {
		status, err := order.ParseStatus(request.Status)
		if err != nil {
			return badRequest(ctx, "Invalid status: "+err.Error())
		}
		cmd, err = commands.NewExplicitUpdateOrderCommand(status)
		if err != nil {
			return badRequest(ctx, "Invalid status: "+err.Error())
		}
	}

	s.sender.Send(orderAddr, cmd)

	return ctx.NoContent(http.StatusAccepted)
}

// GetCustomerStatus handles GET /customers/:id/status.
func (s *Server) GetCustomerStatus(ctx echo.Context) error {
	query, err := queries.NewGetCustomerStatusQuery(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid customer id: "+err.Error())
	}

	view, err := s.getCustomerStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return queryError(ctx, err, "Failed to retrieve customer status")
	}
	return ctx.JSON(http.StatusOK, view)
}

// GetStoreStatus handles GET /store/status.
func (s *Server) GetStoreStatus(ctx echo.Context) error {
	response, err := s.getStoreStatusHandler.Handle(ctx.Request().Context(), queries.NewGetStoreStatusQuery())
	if err != nil {
		return queryError(ctx, err, "Failed to retrieve store status")
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetOrderStatus handles GET /orders/:id/status.
func (s *Server) GetOrderStatus(ctx echo.Context) error {
	query, err := queries.NewGetOrderStatusQuery(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id: "+err.Error())
	}

	snap, err := s.getOrderStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return queryError(ctx, err, "Failed to retrieve order status")
	}
	return ctx.JSON(http.StatusOK, snap)
}

// GetOrderHistory handles GET /orders/:id/history.
func (s *Server) GetOrderHistory(ctx echo.Context) error {
	query, err := queries.NewGetOrderHistoryQuery(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id: "+err.Error())
	}

	log, err := s.getOrderHistoryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return queryError(ctx, err, "Failed to retrieve order history")
	}
	return ctx.JSON(http.StatusOK, log)
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

func queryError(ctx echo.Context, err error, fallback string) error {
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ctx.JSON(http.StatusNotFound, errorResponse{
			Code:    http.StatusNotFound,
			Message: err.Error(),
		})
	}
	return ctx.JSON(http.StatusInternalServerError, errorResponse{
		Code:    http.StatusInternalServerError,
		Message: fallback,
	})
}
