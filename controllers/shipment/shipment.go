package shipment

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"mm-shipping/cache"
	"mm-shipping/constants"
	"mm-shipping/logger"
	"mm-shipping/middleware"
	driverModel "mm-shipping/models/driver"
	shipmentModel "mm-shipping/models/shipment"
	userModel "mm-shipping/models/user"
	"mm-shipping/services/assignment"
	"mm-shipping/services/notification"
	"mm-shipping/services/parcelid"
	"mm-shipping/services/sequence"
	"mm-shipping/services/shipment_event"
	"mm-shipping/types"
	driverTypes "mm-shipping/types/driver"
	shipmentTypes "mm-shipping/types/shipment"
	"mm-shipping/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

const trackingCacheTTLSeconds = 30

// parsePickupDate interprets a YYYY-MM-DD value in server-local time, the
// same zone now.BeginningOfDay compares against, so today's date is never
// judged past by a UTC offset.
func parsePickupDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.Local)
}

// ShipmentController handles shipment lifecycle HTTP requests
type ShipmentController struct {
	DB        *gorm.DB
	Cache     *cache.TrackingCache
	Notifier  notification.Notifier
	Logger    *logger.AsyncLogger
	Allocator *sequence.Allocator
	Gate      *assignment.Gate
}

// NewShipmentController creates a new shipment controller
func NewShipmentController(db *gorm.DB, trackingCache *cache.TrackingCache, notifier notification.Notifier, asyncLogger *logger.AsyncLogger) *ShipmentController {
	return &ShipmentController{
		DB:        db,
		Cache:     trackingCache,
		Notifier:  notifier,
		Logger:    asyncLogger,
		Allocator: sequence.NewAllocator(db),
		Gate:      assignment.NewGate(db),
	}
}

// Helper function to log API requests and responses
func (sc *ShipmentController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	sc.Logger.Log(logEntry)
}

// Helper function to send response and log in one call
func (sc *ShipmentController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	sc.logAPIRequest(c)
	return result
}

// findShipment loads a shipment by path id, answering 404/500 itself. The
// second return is false when a response has already been sent.
func (sc *ShipmentController) findShipment(c *fiber.Ctx) (*shipmentModel.Shipment, bool, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return nil, false, sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid shipment id",
		})
	}

	var s shipmentModel.Shipment
	if err := sc.DB.Preload("Sender").First(&s, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, sc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Shipment not found",
			})
		}
		logger.Error("Failed to find shipment", err)
		return nil, false, sc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
	return &s, true, nil
}

// invalidateTracking drops the cached tracking entry so the next read is
// guaranteed fresh.
func (sc *ShipmentController) invalidateTracking(trackingNumber string) {
	sc.Cache.Delete(cache.TrackingKey(trackingNumber))
}

func (sc *ShipmentController) notifyOwner(s *shipmentModel.Shipment, title, body string) {
	if s.Sender.NotificationToken == nil {
		return
	}
	notification.Dispatch(sc.Notifier, *s.Sender.NotificationToken, title, body, map[string]string{
		"tracking_number": s.TrackingNumber,
		"status":          s.Status.String(),
	})
}

// Store books a new shipment: allocates the parcel sequence, derives the
// identifiers and the scan payload, persists the record, then attaches the
// rendered QR image best-effort.
func (sc *ShipmentController) Store(c *fiber.Ctx) error {
	var req shipmentTypes.ShipmentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	// Validation happens before any identifier is allocated; a rejected
	// booking must leave no partial state behind.
	if missing := req.MissingFields(); len(missing) > 0 {
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Missing required fields",
			Data:    fiber.Map{"missing_fields": missing},
		})
	}

	if !utils.ValidatePhoneNumber(req.ReceiverPhone) {
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "receiver_phone must be a valid UK or Ghana phone number",
		})
	}

	claims, ok := utils.ClaimsFromContext(c)
	if !ok {
		return sc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}

	userUUID, ok := claims["uuid"].(string)
	if !ok || userUUID == "" {
		return sc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User UUID not found in token",
		})
	}

	userInfo, err := utils.GetUserByUUID(userUUID)
	if err != nil {
		logger.Error("Error finding user by UUID", err)
		status := fiber.StatusInternalServerError
		msg := "Database error"
		if err.Error() == "user not found" {
			status = fiber.StatusUnauthorized
			msg = "User not found"
		}
		return sc.sendResponseWithLog(c, status, types.ApiResponse{
			Status:  status,
			Message: msg,
		})
	}

	var pickupDate *time.Time
	if req.PickupDate != "" {
		parsed, err := parsePickupDate(req.PickupDate)
		if err != nil {
			return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "pickup_date must be in YYYY-MM-DD format",
			})
		}
		pickupDate = &parsed
	}

	seq, err := sc.Allocator.Next()
	if err != nil {
		logger.Error("Failed to allocate parcel sequence", err)
		return sc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to allocate parcel identifiers",
		})
	}

	bookedAt := time.Now()
	s := shipmentModel.Shipment{
		TrackingNumber:  parcelid.NewTrackingNumber(bookedAt),
		ParcelID:        parcelid.FormatParcelID(seq, bookedAt),
		ParcelIDShort:   parcelid.FormatShortID(seq),
		SenderID:        userInfo.ID,
		ReceiverName:    req.ReceiverName,
		ReceiverPhone:   req.ReceiverPhone,
		PickupCity:      req.PickupCity,
		PickupAddress:   req.PickupAddress,
		DeliveryCity:    req.DeliveryCity,
		DeliveryAddress: req.DeliveryAddress,
		PickupDate:      pickupDate,
		WeightKG:        req.WeightKG,
		ParcelType:      req.ParcelType,
		ParcelSize:      parcelid.ClassifySize(req.WeightKG),
		Description:     req.Description,
		Items:           req.Items,
		Status:          shipmentModel.StatusBooked,
		WarehouseStatus: shipmentModel.WarehouseNotArrived,
		BookedAt:        bookedAt,
		CreatedBy:       strconv.FormatUint(uint64(userInfo.ID), 10),
	}
	if req.Dimensions != "" {
		s.Dimensions = &req.Dimensions
	}

	err = sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&s).Error; err != nil {
			return err
		}

		statusEvent := shipmentModel.ShipmentStatusEvent{
			ShipmentID: s.ID,
			Status:     s.Status,
			CreatedBy:  s.CreatedBy,
		}
		return tx.Create(&statusEvent).Error
	})
	if err != nil {
		logger.Error("Failed to create shipment", err)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return sc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
				Status:  fiber.StatusConflict,
				Message: "Duplicate tracking number or parcel id",
			})
		}
		return sc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to save shipment",
		})
	}

	// QR generation is best-effort: the booking stands even if rendering or
	// the follow-up update fails.
	s.Sender = *userInfo
	payload := parcelid.BuildScanPayload(&s)
	if encoded, err := parcelid.EncodeScanPayload(payload); err != nil {
		logger.Error("Failed to encode scan payload", err)
	} else {
		s.QRCodeData = encoded
		if path, err := parcelid.RenderQR(encoded, s.TrackingNumber); err != nil {
			logger.Error("Failed to render QR code", err)
		} else {
			s.QRCodeURL = &path
		}
		if err := sc.DB.Model(&shipmentModel.Shipment{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
			"qr_code_data": s.QRCodeData,
			"qr_code_url":  s.QRCodeURL,
		}).Error; err != nil {
			logger.Error("Failed to attach QR payload to shipment", err)
		}
	}

	if err := shipment_event.SnapshotShipmentToEvent(sc.DB, &s, "shipment_booked", s.CreatedBy); err != nil {
		logger.Error("Failed to write shipment event (shipment_booked)", err)
	}

	logger.Success(fmt.Sprintf("Shipment booked with tracking number %s (parcel %s)", s.TrackingNumber, s.ParcelIDShort))

	return sc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Shipment booked successfully",
		Data: fiber.Map{
			"shipment":        s,
			"tracking_number": s.TrackingNumber,
			"parcel_id":       s.ParcelID,
			"parcel_id_short": s.ParcelIDShort,
		},
	})
}

// trackingView exposes a shipment for public tracking. The sender carries
// name and phone only; drivers carry name, phone and verification status.
// Tokens and account identifiers never appear in the response.
type trackingView struct {
	shipmentModel.Shipment
	Sender         userModel.PublicView    `json:"sender"`
	PickupDriver   *driverModel.PublicView `json:"pickup_driver,omitempty"`
	DeliveryDriver *driverModel.PublicView `json:"delivery_driver,omitempty"`
}

func newTrackingView(s *shipmentModel.Shipment) trackingView {
	view := trackingView{Shipment: *s}
	view.Sender = s.Sender.Public()
	view.Shipment.Sender = userModel.User{}
	view.Shipment.PickupDriver = nil
	view.Shipment.DeliveryDriver = nil
	if s.PickupDriver != nil {
		pd := s.PickupDriver.Public()
		view.PickupDriver = &pd
	}
	if s.DeliveryDriver != nil {
		dd := s.DeliveryDriver.Public()
		view.DeliveryDriver = &dd
	}
	return view
}

// Track looks up a shipment by tracking number through the short-TTL cache.
func (sc *ShipmentController) Track(c *fiber.Ctx) error {
	trackingNumber := c.Params("tracking_number")
	if trackingNumber == "" {
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Tracking number is required",
		})
	}

	if cached, ok := sc.Cache.Get(cache.TrackingKey(trackingNumber)); ok {
		return sc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "Shipment found",
			Data:    fiber.Map{"shipment": cached},
		})
	}

	var s shipmentModel.Shipment
	err := sc.DB.
		Preload("Sender").
		Preload("PickupDriver").
		Preload("DeliveryDriver").
		Where("tracking_number = ?", trackingNumber).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Shipment not found",
			})
		}
		logger.Error("Failed to find shipment by tracking number", err)
		return sc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	view := newTrackingView(&s)
	sc.Cache.Set(cache.TrackingKey(trackingNumber), view, trackingCacheTTLSeconds)

	return sc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Shipment found",
		Data:    fiber.Map{"shipment": view},
	})
}

// UpdateStatus advances a shipment along the forward delivery pipeline. The
// update is conditioned on the expected prior status so concurrent
// transitions serialize instead of losing writes.
func (sc *ShipmentController) UpdateStatus(c *fiber.Ctx) error {
	var req shipmentTypes.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	to := shipmentModel.Status(req.Status)
	if !to.IsValid() {
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Unknown status '%s'", req.Status),
		})
	}

	s, ok, resp := sc.findShipment(c)
	if !ok {
		return resp
	}

	claims, _ := utils.ClaimsFromContext(c)
	actor := utils.ActorFromClaims(claims)
	from := s.Status

	if !shipmentModel.CanTransition(from, to) {
		return sc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: fmt.Sprintf("Cannot transition from '%s' to '%s'", from, to),
			Data: fiber.Map{
				"current_status":   from,
				"allowed_statuses": shipmentModel.NextStatuses(from),
			},
		})
	}

	nowTime := time.Now()
	updates := map[string]interface{}{
		"status":     to,
		"updated_by": actor,
	}
	if col := shipmentModel.TimestampColumn(to); col != "" {
		// COALESCE keeps an already-stamped timestamp untouched.
		updates[col] = gorm.Expr("COALESCE("+col+", ?)", nowTime)
	}

	res := sc.DB.Model(&shipmentModel.Shipment{}).
		Where("id = ? AND status = ?", s.ID, from).
		Updates(updates)
	if res.Error != nil {
		logger.Error("Failed to update shipment status", res.Error)
		return sc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to update shipment status",
		})
	}
	if res.RowsAffected == 0 {
		// Another request moved the shipment first.
		return sc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: "Shipment status changed concurrently, retry with the current status",
			Data: fiber.Map{
				"expected_status": from,
			},
		})
	}

	statusEvent := shipmentModel.ShipmentStatusEvent{
		ShipmentID: s.ID,
		Status:     to,
		CreatedBy:  actor,
	}
	if err := sc.DB.Create(&statusEvent).Error; err != nil {
		logger.Error("Failed to create shipment status event", err)
	}

	if err := shipment_event.SnapshotShipmentToEvent(sc.DB, s, "status_updated", actor); err != nil {
		logger.Error("Failed to write shipment event (status_updated)", err)
	}

	sc.invalidateTracking(s.TrackingNumber)
	sc.notifyOwner(s, "Shipment update", fmt.Sprintf("Your parcel %s is now %s", s.ParcelIDShort, to))

	logger.Success(fmt.Sprintf("Shipment %s moved from %s to %s by %s", s.TrackingNumber, from, to, actor))

	return sc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Shipment status updated successfully",
		Data:    fiber.Map{"shipment": s},
	})
}

// Cancel marks a shipment cancelled. Only pre-pickup shipments qualify;
// everything already in motion must run its course.
func (sc *ShipmentController) Cancel(c *fiber.Ctx) error {
	// Cancel accepts an empty body; a reason is optional.
	var req shipmentTypes.CancelRequest
	if err := c.BodyParser(&req); err != nil {
		req = shipmentTypes.CancelRequest{}
	}

	s, ok, resp := sc.findShipment(c)
	if !ok {
		return resp
	}

	claims, _ := utils.ClaimsFromContext(c)
	actor := utils.ActorFromClaims(claims)

	if !s.Status.CanBeCancelled() {
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Cannot cancel a shipment in status '%s'", s.Status),
			Data: fiber.Map{
				"current_status":   s.Status,
				"allowed_statuses": shipmentModel.CancellableStatuses,
			},
		})
	}

	nowTime := time.Now()
	from := s.Status
	note := "Shipment cancelled by " + actor
	if req.Reason != "" {
		note += ": " + req.Reason
	}
	s.AppendNote(note, nowTime)

	res := sc.DB.Model(&shipmentModel.Shipment{}).
		Where("id = ? AND status = ?", s.ID, from).
		Updates(map[string]interface{}{
			"status":       shipmentModel.StatusCancelled,
			"cancelled_at": gorm.Expr("COALESCE(cancelled_at, ?)", nowTime),
			"admin_notes":  s.AdminNotes,
			"updated_by":   actor,
		})
	if res.Error != nil {
		logger.Error("Failed to cancel shipment", res.Error)
		return sc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to cancel shipment",
		})
	}
	if res.RowsAffected == 0 {
		return sc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: "Shipment status changed concurrently, retry",
		})
	}

	statusEvent := shipmentModel.ShipmentStatusEvent{
		ShipmentID: s.ID,
		Status:     shipmentModel.StatusCancelled,
		CreatedBy:  actor,
	}
	if err := sc.DB.Create(&statusEvent).Error; err != nil {
		logger.Error("Failed to create shipment status event", err)
	}

	if err := shipment_event.SnapshotShipmentToEvent(sc.DB, s, "shipment_cancelled", actor); err != nil {
		logger.Error("Failed to write shipment event (shipment_cancelled)", err)
	}

	sc.invalidateTracking(s.TrackingNumber)

	// Cancellation fans out to everyone bound to the shipment.
	sc.notifyOwner(s, "Shipment cancelled", fmt.Sprintf("Your parcel %s has been cancelled", s.ParcelIDShort))
	sc.notifyDriver(s.PickupDriverID, "Pickup cancelled", fmt.Sprintf("Pickup for parcel %s has been cancelled", s.ParcelIDShort), s)
	sc.notifyDriver(s.DeliveryDriverID, "Delivery cancelled", fmt.Sprintf("Delivery for parcel %s has been cancelled", s.ParcelIDShort), s)
	sc.notifyAdmin("Shipment cancelled", fmt.Sprintf("Parcel %s (%s) was cancelled by %s", s.ParcelIDShort, s.TrackingNumber, actor), s)

	logger.Success(fmt.Sprintf("Shipment %s cancelled by %s", s.TrackingNumber, actor))

	return sc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Shipment cancelled successfully",
		Data:    fiber.Map{"shipment": s},
	})
}

// SwitchToDropoff flags the shipment as a customer drop-off at the warehouse
// instead of a courier pickup.
func (sc *ShipmentController) SwitchToDropoff(c *fiber.Ctx) error {
	s, ok, resp := sc.findShipment(c)
	if !ok {
		return resp
	}

	claims, _ := utils.ClaimsFromContext(c)
	actor := utils.ActorFromClaims(claims)

	if !s.Status.CanSwitchToDropoff() {
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Cannot switch to drop-off from status '%s'", s.Status),
			Data: fiber.Map{
				"current_status":   s.Status,
				"allowed_statuses": shipmentModel.DropoffEligibleStatuses,
			},
		})
	}

	nowTime := time.Now()
	from := s.Status
	s.MarkSelfDropoff(actor, nowTime)

	res := sc.DB.Model(&shipmentModel.Shipment{}).
		Where("id = ? AND status = ?", s.ID, from).
		Updates(map[string]interface{}{
			"status":          s.Status,
			"is_self_dropoff": s.IsSelfDropoff,
			"admin_notes":     s.AdminNotes,
			"updated_by":      actor,
		})
	if res.Error != nil {
		logger.Error("Failed to switch shipment to drop-off", res.Error)
		return sc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to switch shipment to drop-off",
		})
	}
	if res.RowsAffected == 0 {
		return sc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: "Shipment status changed concurrently, retry",
		})
	}

	statusEvent := shipmentModel.ShipmentStatusEvent{
		ShipmentID: s.ID,
		Status:     shipmentModel.StatusPendingDropoff,
		CreatedBy:  actor,
	}
	if err := sc.DB.Create(&statusEvent).Error; err != nil {
		logger.Error("Failed to create shipment status event", err)
	}

	if err := shipment_event.SnapshotShipmentToEvent(sc.DB, s, "switched_to_dropoff", actor); err != nil {
		logger.Error("Failed to write shipment event (switched_to_dropoff)", err)
	}

	sc.invalidateTracking(s.TrackingNumber)

	logger.Success(fmt.Sprintf("Shipment %s switched to self drop-off", s.TrackingNumber))

	return sc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Shipment switched to drop-off successfully",
		Data:    fiber.Map{"shipment": s},
	})
}

// CancelDropoff reverts a pending drop-off back to a courier pickup booking.
func (sc *ShipmentController) CancelDropoff(c *fiber.Ctx) error {
	s, ok, resp := sc.findShipment(c)
	if !ok {
		return resp
	}

	claims, _ := utils.ClaimsFromContext(c)
	actor := utils.ActorFromClaims(claims)

	if !s.Status.CanCancelDropoff() {
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Cannot cancel drop-off from status '%s'", s.Status),
			Data: fiber.Map{
				"current_status":   s.Status,
				"allowed_statuses": []shipmentModel.Status{shipmentModel.StatusPendingDropoff},
			},
		})
	}

	nowTime := time.Now()
	s.RevertSelfDropoff(actor, nowTime)

	res := sc.DB.Model(&shipmentModel.Shipment{}).
		Where("id = ? AND status = ?", s.ID, shipmentModel.StatusPendingDropoff).
		Updates(map[string]interface{}{
			"status":          s.Status,
			"is_self_dropoff": s.IsSelfDropoff,
			"admin_notes":     s.AdminNotes,
			"updated_by":      actor,
		})
	if res.Error != nil {
		logger.Error("Failed to cancel drop-off", res.Error)
		return sc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to cancel drop-off",
		})
	}
	if res.RowsAffected == 0 {
		return sc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: "Shipment status changed concurrently, retry",
		})
	}

	statusEvent := shipmentModel.ShipmentStatusEvent{
		ShipmentID: s.ID,
		Status:     shipmentModel.StatusBooked,
		CreatedBy:  actor,
	}
	if err := sc.DB.Create(&statusEvent).Error; err != nil {
		logger.Error("Failed to create shipment status event", err)
	}

	if err := shipment_event.SnapshotShipmentToEvent(sc.DB, s, "dropoff_cancelled", actor); err != nil {
		logger.Error("Failed to write shipment event (dropoff_cancelled)", err)
	}

	sc.invalidateTracking(s.TrackingNumber)
	sc.notifyOwner(s, "Drop-off cancelled", fmt.Sprintf("Parcel %s is back to courier pickup", s.ParcelIDShort))

	logger.Success(fmt.Sprintf("Shipment %s drop-off cancelled", s.TrackingNumber))

	return sc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Drop-off cancelled successfully",
		Data:    fiber.Map{"shipment": s},
	})
}

// Reschedule moves the pickup date without touching the status.
func (sc *ShipmentController) Reschedule(c *fiber.Ctx) error {
	var req shipmentTypes.RescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	newDate, err := parsePickupDate(req.PickupDate)
	if err != nil {
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "pickup_date must be in YYYY-MM-DD format",
		})
	}
	if newDate.Before(now.BeginningOfDay()) {
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "pickup_date cannot be in the past",
		})
	}

	s, ok, resp := sc.findShipment(c)
	if !ok {
		return resp
	}

	claims, _ := utils.ClaimsFromContext(c)
	actor := utils.ActorFromClaims(claims)

	if !s.Status.CanBeRescheduled() {
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Cannot reschedule a shipment in status '%s'", s.Status),
			Data: fiber.Map{
				"current_status":   s.Status,
				"allowed_statuses": shipmentModel.DropoffEligibleStatuses,
			},
		})
	}

	oldDate := "unset"
	if s.PickupDate != nil {
		oldDate = s.PickupDate.Format("2006-01-02")
	}
	nowTime := time.Now()
	s.AppendNote(fmt.Sprintf("Pickup rescheduled from %s to %s by %s: %s", oldDate, req.PickupDate, actor, req.Reason), nowTime)

	res := sc.DB.Model(&shipmentModel.Shipment{}).
		Where("id = ? AND status = ?", s.ID, s.Status).
		Updates(map[string]interface{}{
			"pickup_date": newDate,
			"admin_notes": s.AdminNotes,
			"updated_by":  actor,
		})
	if res.Error != nil {
		logger.Error("Failed to reschedule shipment", res.Error)
		return sc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to reschedule shipment",
		})
	}
	if res.RowsAffected == 0 {
		return sc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: "Shipment status changed concurrently, retry",
		})
	}

	if err := shipment_event.SnapshotShipmentToEvent(sc.DB, s, "pickup_rescheduled", actor); err != nil {
		logger.Error("Failed to write shipment event (pickup_rescheduled)", err)
	}

	sc.invalidateTracking(s.TrackingNumber)
	sc.notifyOwner(s, "Pickup rescheduled", fmt.Sprintf("Pickup for parcel %s moved to %s", s.ParcelIDShort, req.PickupDate))
	sc.notifyDriver(s.PickupDriverID, "Pickup rescheduled", fmt.Sprintf("Pickup for parcel %s moved to %s", s.ParcelIDShort, req.PickupDate), s)

	logger.Success(fmt.Sprintf("Shipment %s pickup rescheduled to %s", s.TrackingNumber, req.PickupDate))

	return sc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Shipment rescheduled successfully",
		Data:    fiber.Map{"shipment": s},
	})
}

func (sc *ShipmentController) notifyDriver(driverID *uint, title, body string, s *shipmentModel.Shipment) {
	if driverID == nil {
		return
	}
	var d driverModel.Driver
	if err := sc.DB.First(&d, *driverID).Error; err != nil {
		logger.Error("Failed to load driver for notification", err)
		return
	}
	if d.NotificationToken == nil {
		return
	}
	notification.Dispatch(sc.Notifier, *d.NotificationToken, title, body, map[string]string{
		"tracking_number": s.TrackingNumber,
	})
}

func (sc *ShipmentController) notifyAdmin(title, body string, s *shipmentModel.Shipment) {
	token := os.Getenv("ADMIN_NOTIFY_TOKEN")
	if token == "" {
		return
	}
	notification.Dispatch(sc.Notifier, token, title, body, map[string]string{
		"tracking_number": s.TrackingNumber,
	})
}

// AssignDriver binds a driver to one leg of the shipment, or clears the
// binding when driver_id is zero. Eligibility runs through the assignment
// gate; admins may bind unverified drivers.
func (sc *ShipmentController) AssignDriver(c *fiber.Ctx) error {
	var req driverTypes.AssignDriverRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	s, ok, resp := sc.findShipment(c)
	if !ok {
		return resp
	}

	claims, _ := utils.ClaimsFromContext(c)
	actor := utils.ActorFromClaims(claims)
	kind := assignment.Kind(req.Type)
	nowTime := time.Now()

	if req.DriverID == 0 {
		assignment.Unassign(s, kind)
		s.AppendNote(fmt.Sprintf("%s driver unassigned by %s", req.Type, actor), nowTime)
		s.UpdatedBy = actor

		if err := sc.DB.Save(s).Error; err != nil {
			logger.Error("Failed to unassign driver", err)
			return sc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Failed to unassign driver",
			})
		}

		if err := shipment_event.SnapshotShipmentToEvent(sc.DB, s, req.Type+"_driver_unassigned", actor); err != nil {
			logger.Error("Failed to write shipment event (driver_unassigned)", err)
		}

		sc.invalidateTracking(s.TrackingNumber)

		logger.Success(fmt.Sprintf("Shipment %s %s driver unassigned by %s", s.TrackingNumber, req.Type, actor))

		return sc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "Driver unassigned successfully",
			Data:    fiber.Map{"shipment": s},
		})
	}

	requireVerified := !middleware.CheckPermissionInController(c, constants.PermAdminFull)

	d, err := sc.Gate.Assign(s, req.DriverID, kind, requireVerified, nowTime)
	if err != nil {
		switch {
		case errors.Is(err, assignment.ErrDriverNotFound):
			return sc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Driver not found",
			})
		case errors.Is(err, assignment.ErrNotADriver),
			errors.Is(err, assignment.ErrWrongDriverType),
			errors.Is(err, assignment.ErrNotVerified):
			return sc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: err.Error(),
			})
		default:
			logger.Error("Failed to assign driver", err)
			return sc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Failed to assign driver",
			})
		}
	}

	s.AppendNote(fmt.Sprintf("%s driver %s assigned by %s", req.Type, d.Name, actor), nowTime)
	s.UpdatedBy = actor

	if err := sc.DB.Save(s).Error; err != nil {
		logger.Error("Failed to save driver assignment", err)
		return sc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to save driver assignment",
		})
	}

	if kind == assignment.KindDelivery {
		// The gate forced the shipment out_for_delivery; record it.
		statusEvent := shipmentModel.ShipmentStatusEvent{
			ShipmentID: s.ID,
			Status:     s.Status,
			CreatedBy:  actor,
		}
		if err := sc.DB.Create(&statusEvent).Error; err != nil {
			logger.Error("Failed to create shipment status event", err)
		}
	}

	if err := shipment_event.SnapshotShipmentToEvent(sc.DB, s, req.Type+"_driver_assigned", actor); err != nil {
		logger.Error("Failed to write shipment event (driver_assigned)", err)
	}

	sc.invalidateTracking(s.TrackingNumber)

	if d.NotificationToken != nil {
		leg := "pickup"
		body := fmt.Sprintf("You have been assigned to pick up parcel %s in %s", s.ParcelIDShort, s.PickupCity)
		if kind == assignment.KindDelivery {
			leg = "delivery"
			body = fmt.Sprintf("You have been assigned to deliver parcel %s in %s", s.ParcelIDShort, s.DeliveryCity)
		}
		notification.Dispatch(sc.Notifier, *d.NotificationToken, "New "+leg+" assignment", body, map[string]string{
			"tracking_number": s.TrackingNumber,
		})
	}
	if kind == assignment.KindDelivery {
		sc.notifyOwner(s, "Out for delivery", fmt.Sprintf("Your parcel %s is out for delivery", s.ParcelIDShort))
	}

	logger.Success(fmt.Sprintf("Shipment %s %s driver %d assigned by %s", s.TrackingNumber, req.Type, d.ID, actor))

	return sc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Driver assigned successfully",
		Data: fiber.Map{
			"shipment": s,
			"driver":   d.Public(),
		},
	})
}
