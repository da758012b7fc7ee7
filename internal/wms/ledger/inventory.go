package ledger

import (
	"errors"
	"time"

	"github.com/bitfantasy/nimo-wms/internal/wms/entity"
	"github.com/bitfantasy/nimo-wms/internal/wms/repository"
)

// 每个库位索引桶最多容纳的条目数
const MaxLocationItems = 1000

// Ledger 库存账本核心算法。所有修改操作都假定运行在 repository.Set 的
// Atomically 回调内：中途任何一步失败，整组写入回滚。
type Ledger struct {
	now func() int64
}

func New() *Ledger {
	return &Ledger{now: func() int64 { return time.Now().UnixNano() }}
}

// NewWithClock 注入逻辑时钟，测试用
func NewWithClock(now func() int64) *Ledger {
	return &Ledger{now: now}
}

func validSku(sku string) bool {
	return len(sku) > 0 && len(sku) <= entity.MaxSkuLen
}

// satAdd 饱和加法，溢出时封顶
func satAdd(a, b uint32) uint32 {
	if s := a + b; s >= a {
		return s
	}
	return ^uint32(0)
}

// InsertItem 新条目入库。序列号在 (owner, sku) 下必须唯一，目标库位
// 必须未满。落库同时更新库位索引与SKU汇总。
func (l *Ledger) InsertItem(s repository.Set, item entity.Item) (Event, error) {
	if !validSku(item.Sku) {
		return Event{}, ErrInvalidSkuLength
	}
	if !item.Location.Valid() {
		return Event{}, ErrLocationNotFound
	}
	inv := s.Inventory()
	if _, err := inv.GetItem(item.Owner, item.Sku, item.SerialNumber); err == nil {
		return Event{}, ErrDuplicateSerial
	} else if !errors.Is(err, repository.ErrNotFound) {
		return Event{}, err
	}
	n, err := inv.BucketLen(item.Owner, item.Location)
	if err != nil {
		return Event{}, err
	}
	if n >= MaxLocationItems {
		return Event{}, ErrInventoryFull
	}
	item.CreatedAt = l.now()
	if err := inv.EnsureBucket(item.Owner, item.Location); err != nil {
		return Event{}, err
	}
	if err := inv.PutItem(&item); err != nil {
		return Event{}, err
	}
	if err := inv.PutBucketItem(item.Owner, item.Location, item); err != nil {
		return Event{}, err
	}
	if err := l.addTotal(inv, item.Owner, item.Sku, item.Qty); err != nil {
		return Event{}, err
	}
	return Event{
		Type:  EventItemAdded,
		Owner: item.Owner,
		Data: map[string]any{
			"sku":           item.Sku,
			"serial_number": item.SerialNumber,
			"qty":           item.Qty,
			"location":      item.Location,
		},
	}, nil
}

// ScrapItem 报废。条目从活跃库存、库位索引、SKU汇总中移除并写入报废记录，不可恢复。
func (l *Ledger) ScrapItem(s repository.Set, owner, sku string, serial uint32, details entity.ScrapDetails) (Event, error) {
	if len(details.Reason) > entity.MaxReasonLen {
		return Event{}, ErrDescriptionTooLong
	}
	inv := s.Inventory()
	item, err := inv.GetItem(owner, sku, serial)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Event{}, ErrInventoryNotFound
		}
		return Event{}, err
	}
	if err := inv.DeleteBucketItem(owner, item.Location, serial); err != nil {
		return Event{}, err
	}
	if err := inv.DeleteItem(owner, sku, serial); err != nil {
		return Event{}, err
	}
	if err := l.subTotal(inv, owner, sku, item.Qty); err != nil {
		return Event{}, err
	}
	rec := entity.ScrapRecord{
		Owner:        owner,
		Sku:          sku,
		SerialNumber: serial,
		Item:         *item,
		Details:      details,
		ScrappedAt:   time.Unix(0, l.now()),
	}
	if err := inv.PutScrap(&rec); err != nil {
		return Event{}, err
	}
	return Event{
		Type:  EventItemScrapped,
		Owner: owner,
		Data: map[string]any{
			"sku":           sku,
			"serial_number": serial,
			"qty":           item.Qty,
			"reason":        details.Reason,
		},
	}, nil
}

// MoveItem 整件移库，本质是一次库位调整并留审计记录
func (l *Ledger) MoveItem(s repository.Set, owner, mover, sku string, serial uint32, to entity.Location, reason string) (Event, error) {
	inv := s.Inventory()
	item, err := inv.GetItem(owner, sku, serial)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Event{}, ErrInventoryNotFound
		}
		return Event{}, err
	}
	details := entity.AdjustDetails{
		Type:             entity.AdjustLocation,
		OriginalLocation: item.Location,
		NewLocation:      to,
		Reason:           reason,
	}
	if _, err := l.applyAdjust(s, owner, mover, sku, serial, details); err != nil {
		return Event{}, err
	}
	return Event{
		Type:  EventItemMoved,
		Owner: owner,
		Data: map[string]any{
			"sku":           sku,
			"serial_number": serial,
			"from":          details.OriginalLocation,
			"to":            to,
		},
	}, nil
}

// AdjustItem 数量调整。明细必须与条目当前值一致，防止并发下的盲写。
// 只接受数量明细，库位变更走 MoveItem。
func (l *Ledger) AdjustItem(s repository.Set, owner, issuer, sku string, serial uint32, details entity.AdjustDetails) (Event, error) {
	if details.Type != entity.AdjustQuantity {
		return Event{}, ErrInvalidAdjustDetails
	}
	item, err := l.applyAdjust(s, owner, issuer, sku, serial, details)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Type:  EventItemAdjusted,
		Owner: owner,
		Data: map[string]any{
			"sku":           sku,
			"serial_number": serial,
			"adjust_type":   details.Type,
			"qty":           item.Qty,
			"location":      item.Location,
		},
	}, nil
}

func (l *Ledger) applyAdjust(s repository.Set, owner, issuer, sku string, serial uint32, details entity.AdjustDetails) (*entity.Item, error) {
	if len(details.Reason) > entity.MaxReasonLen {
		return nil, ErrDescriptionTooLong
	}
	inv := s.Inventory()
	item, err := inv.GetItem(owner, sku, serial)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInventoryNotFound
		}
		return nil, err
	}

	switch details.Type {
	case entity.AdjustQuantity:
		// 原数量必须匹配当前值；归零走报废流程
		if details.OriginalQty != item.Qty || details.NewQty == 0 {
			return nil, ErrInvalidAdjustDetails
		}
		if details.NewQty > item.Qty {
			if err := l.addTotal(inv, owner, sku, details.NewQty-item.Qty); err != nil {
				return nil, err
			}
		} else {
			if err := l.subTotal(inv, owner, sku, item.Qty-details.NewQty); err != nil {
				return nil, err
			}
		}
		item.Qty = details.NewQty
		if err := inv.PutItem(item); err != nil {
			return nil, err
		}
		if err := inv.PutBucketItem(owner, item.Location, *item); err != nil {
			return nil, err
		}

	case entity.AdjustLocation:
		if details.OriginalLocation != item.Location {
			return nil, ErrInvalidAdjustDetails
		}
		if !details.NewLocation.Valid() {
			return nil, ErrLocationNotFound
		}
		if details.NewLocation != item.Location {
			n, err := inv.BucketLen(owner, details.NewLocation)
			if err != nil {
				return nil, err
			}
			if n >= MaxLocationItems {
				return nil, ErrInventoryFull
			}
			if err := inv.DeleteBucketItem(owner, item.Location, serial); err != nil {
				return nil, err
			}
			item.Location = details.NewLocation
		}
		item.MovedBy = issuer
		if err := inv.EnsureBucket(owner, item.Location); err != nil {
			return nil, err
		}
		if err := inv.PutItem(item); err != nil {
			return nil, err
		}
		if err := inv.PutBucketItem(owner, item.Location, *item); err != nil {
			return nil, err
		}

	default:
		return nil, ErrInvalidAdjustDetails
	}

	rec := entity.AdjustRecord{
		Owner:        owner,
		Sku:          sku,
		SerialNumber: serial,
		Issuer:       issuer,
		Item:         *item,
		Details:      details,
		RecordedAt:   time.Unix(0, l.now()),
	}
	if err := inv.AppendAdjust(&rec); err != nil {
		return nil, err
	}
	return item, nil
}

// addTotal 汇总加量，溢出封顶
func (l *Ledger) addTotal(inv repository.InventoryRepository, owner, sku string, qty uint32) error {
	total, err := inv.GetTotal(owner, sku)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return inv.PutTotal(owner, sku, satAdd(total, qty))
}

// subTotal 汇总减量。减量超过当前汇总说明账实已不一致，报错而不是静默截断；归零即删。
func (l *Ledger) subTotal(inv repository.InventoryRepository, owner, sku string, qty uint32) error {
	total, err := inv.GetTotal(owner, sku)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if qty == 0 {
				return nil
			}
			return ErrInsufficientInventory
		}
		return err
	}
	if total < qty {
		return ErrInsufficientInventory
	}
	if total == qty {
		return inv.DeleteTotal(owner, sku)
	}
	return inv.PutTotal(owner, sku, total-qty)
}
