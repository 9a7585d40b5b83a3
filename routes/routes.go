package routes

import (
	"mm-shipping/cache"
	"mm-shipping/constants"
	shipmentController "mm-shipping/controllers/shipment"
	warehouseController "mm-shipping/controllers/warehouse"
	"mm-shipping/logger"
	"mm-shipping/middleware"
	"mm-shipping/services/notification"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, trackingCache *cache.TrackingCache) {
	asyncLogger := logger.NewAsyncLogger(db)
	notifier := notification.NewHTTPNotifier()
	shipments := shipmentController.NewShipmentController(db, trackingCache, notifier, asyncLogger)
	warehouse := warehouseController.NewWarehouseController(db, trackingCache, asyncLogger)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "mm-shipping",
			"status":  "ok",
		})
	})

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")

	// Tracking is public: the tracking number is the capability.
	api.Get("/shipments/track/:tracking_number", shipments.Track)

	/*=============================================================================
	| Warehouse Routes
	| Registered before the /:id routes so "warehouse" never binds as an id.
	===============================================================================*/
	api.Get("/shipments/warehouse/:parcel_id", middleware.RequirePermissions(
		constants.StaffPermissions...,
	), warehouse.GetByParcelID)

	api.Put("/shipments/warehouse/:parcel_id/status", middleware.RequirePermissions(
		constants.StaffPermissions...,
	), warehouse.UpdateWarehouseStatus)

	/*=============================================================================
	| Shipment Routes
	===============================================================================*/
	api.Post("/shipments", middleware.RequirePermissions(
		constants.PermCustomerFull,
		constants.PermAdminFull,
	), shipments.Store)

	// Forward pipeline transitions are driver and admin territory.
	api.Put("/shipments/:id/status", middleware.RequirePermissions(
		constants.PermDriverFull,
		constants.PermAdminFull,
	), shipments.UpdateStatus)

	api.Put("/shipments/:id/assign-driver", middleware.RequirePermissions(
		constants.PermAdminFull,
		constants.PermWarehouseFull,
	), shipments.AssignDriver)

	api.Put("/shipments/:id/cancel", middleware.RequirePermissions(
		constants.PermCustomerFull,
		constants.PermAdminFull,
	), shipments.Cancel)

	api.Put("/shipments/:id/dropoff", middleware.RequirePermissions(
		constants.PermCustomerFull,
		constants.PermAdminFull,
	), shipments.SwitchToDropoff)

	api.Put("/shipments/:id/cancel-dropoff", middleware.RequirePermissions(
		constants.PermCustomerFull,
		constants.PermAdminFull,
	), shipments.CancelDropoff)

	api.Put("/shipments/:id/reschedule", middleware.RequirePermissions(
		constants.PermCustomerFull,
		constants.PermAdminFull,
	), shipments.Reschedule)
}
