package warehouse

import (
	"errors"
	"fmt"

	"mm-shipping/cache"
	"mm-shipping/logger"
	shipmentModel "mm-shipping/models/shipment"
	"mm-shipping/services/parcelid"
	"mm-shipping/services/shipment_event"
	"mm-shipping/types"
	shipmentTypes "mm-shipping/types/shipment"
	"mm-shipping/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// WarehouseController handles parcel scanning and warehouse handling stages
type WarehouseController struct {
	DB     *gorm.DB
	Cache  *cache.TrackingCache
	Logger *logger.AsyncLogger
}

// NewWarehouseController creates a new warehouse controller
func NewWarehouseController(db *gorm.DB, trackingCache *cache.TrackingCache, asyncLogger *logger.AsyncLogger) *WarehouseController {
	return &WarehouseController{
		DB:     db,
		Cache:  trackingCache,
		Logger: asyncLogger,
	}
}

func (wc *WarehouseController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	wc.Logger.Log(logEntry)
}

func (wc *WarehouseController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	wc.logAPIRequest(c)
	return result
}

// findByParcelID accepts either label form, long (MM-UK-2025-00482) or short
// (MM482). Scanners at the warehouse send whichever the label gave them.
func (wc *WarehouseController) findByParcelID(parcelID string) (*shipmentModel.Shipment, error) {
	var s shipmentModel.Shipment
	err := wc.DB.
		Preload("Sender").
		Where("parcel_id = ? OR parcel_id_short = ?", parcelID, parcelID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByParcelID resolves a scanned label to the shipment and its decoded scan
// payload.
func (wc *WarehouseController) GetByParcelID(c *fiber.Ctx) error {
	parcelID := c.Params("parcel_id")
	if parcelID == "" {
		return wc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Parcel id is required",
		})
	}

	s, err := wc.findByParcelID(parcelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Parcel not found",
			})
		}
		logger.Error("Failed to find parcel by id", err)
		return wc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	data := fiber.Map{
		"shipment":         s,
		"warehouse_status": s.WarehouseStatus,
	}

	// The stored payload is what the printed QR carries; surface it decoded
	// so scanner clients need not parse it themselves.
	if s.QRCodeData != "" {
		payload, err := parcelid.DecodeScanPayload(s.QRCodeData)
		if err != nil {
			logger.Warning(fmt.Sprintf("Stored scan payload for %s is unreadable: %v", s.ParcelID, err))
		} else {
			data["scan_payload"] = payload
		}
	}

	return wc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Parcel found",
		Data:    data,
	})
}

// UpdateWarehouseStatus moves a parcel through the physical handling stages.
// Warehouse stages are an independent axis from the delivery pipeline and do
// not consult the status transition table.
func (wc *WarehouseController) UpdateWarehouseStatus(c *fiber.Ctx) error {
	var req shipmentTypes.WarehouseStatusRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return wc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return wc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ws := shipmentModel.WarehouseStatus(req.WarehouseStatus)
	if !ws.IsValid() {
		return wc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Unknown warehouse status '%s'", req.WarehouseStatus),
			Data: fiber.Map{
				"allowed_statuses": shipmentModel.GetAllWarehouseStatuses(),
			},
		})
	}

	parcelID := c.Params("parcel_id")
	s, err := wc.findByParcelID(parcelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Parcel not found",
			})
		}
		logger.Error("Failed to find parcel by id", err)
		return wc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	claims, _ := utils.ClaimsFromContext(c)
	actor := utils.ActorFromClaims(claims)

	if err := wc.DB.Model(&shipmentModel.Shipment{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"warehouse_status": ws,
			"updated_by":       actor,
		}).Error; err != nil {
		logger.Error("Failed to update warehouse status", err)
		return wc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to update warehouse status",
		})
	}

	if err := shipment_event.SnapshotShipmentToEvent(wc.DB, s, "warehouse_status_updated", actor); err != nil {
		logger.Error("Failed to write shipment event (warehouse_status_updated)", err)
	}

	wc.Cache.Delete(cache.TrackingKey(s.TrackingNumber))

	logger.Success(fmt.Sprintf("Parcel %s warehouse status set to %s by %s", s.ParcelID, ws, actor))

	return wc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Warehouse status updated successfully",
		Data:    fiber.Map{"shipment": s},
	})
}
