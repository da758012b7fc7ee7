package ledger

// EventType 业务事件类型
type EventType string

const (
	EventItemAdded        EventType = "item_added"
	EventItemScrapped     EventType = "item_scrapped"
	EventItemMoved        EventType = "item_moved"
	EventItemAdjusted     EventType = "item_adjusted"
	EventMaterialAdded    EventType = "material_added"
	EventMaterialUpdated  EventType = "material_updated"
	EventMaterialDeleted  EventType = "material_deleted"
	EventRecipeAdded      EventType = "recipe_added"
	EventWorkOrderCreated EventType = "work_order_created"
	EventStagingPrepared  EventType = "staging_prepared"
	EventProductAssembled EventType = "product_assembled"
)

// Event 领域事件，事务提交后经 notify 层广播
type Event struct {
	Type  EventType      `json:"type"`
	Owner string         `json:"owner,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}
