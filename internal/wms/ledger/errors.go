package ledger

import "errors"

// 业务错误。handler 层按 errors.Is 映射到HTTP状态码。
var (
	ErrInvalidSkuLength       = errors.New("sku must be 1 to 16 bytes")
	ErrDescriptionTooLong     = errors.New("description exceeds 128 bytes")
	ErrInventoryNotFound      = errors.New("inventory item not found")
	ErrDuplicateSerial        = errors.New("serial number already in use for this sku")
	ErrInsufficientInventory  = errors.New("insufficient inventory")
	ErrInvalidAdjustDetails   = errors.New("adjustment details do not match current item state")
	ErrInventoryFull          = errors.New("location is at capacity")
	ErrLocationNotFound       = errors.New("unknown location")
	ErrMaterialAlreadyExists  = errors.New("material already exists")
	ErrMaterialNotFound       = errors.New("material not found")
	ErrStorageOverflow        = errors.New("record exceeds storage bounds")
	ErrWorkOrderNotFound      = errors.New("work order not found")
	ErrWorkOrderAlreadyExists = errors.New("work order already exists")
	ErrWorkOrderState         = errors.New("work order is not in the required state")
	ErrStagingAreaNotFound    = errors.New("staging area not found")
	ErrBomConstructIssue      = errors.New("bill of materials could not be constructed")
)
