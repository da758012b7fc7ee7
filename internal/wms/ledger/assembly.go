package ledger

import (
	"errors"
	"sort"
	"time"

	"github.com/bitfantasy/nimo-wms/internal/wms/entity"
	"github.com/bitfantasy/nimo-wms/internal/wms/repository"
)

// 装配流程写入审计记录时使用的调整原因
const (
	reasonPrepareStaging    = "Prepare Staging Area"
	reasonAssemble          = "Assemble Product"
	reasonReturnToWarehouse = "Assembled Product complete, move to warehouse"
)

// CreateWorkOrder 创建工单并固化当前配方快照。工单号全局唯一。
func (l *Ledger) CreateWorkOrder(s repository.Set, creator string, number uint32, sku string) (Event, error) {
	wos := s.WorkOrders()
	if _, err := wos.GetWorkOrder(number); err == nil {
		return Event{}, ErrWorkOrderAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return Event{}, err
	}
	recipe, err := s.Catalog().GetRecipe(sku)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Event{}, ErrBomConstructIssue
		}
		return Event{}, err
	}
	now := time.Unix(0, l.now())
	wo := entity.WorkOrder{
		WorkOrderNumber: number,
		Recipe:          *recipe,
		Status:          entity.WOStatusCreated,
		CreatedBy:       creator,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := wos.PutWorkOrder(&wo); err != nil {
		return Event{}, err
	}
	return Event{
		Type: EventWorkOrderCreated,
		Data: map[string]any{
			"work_order_number": number,
			"sku":               sku,
		},
	}, nil
}

// PrepareStagingArea 备料。逐组件先校验 (owner, sku) 汇总数量是否覆盖需求，
// 然后在货主全部库存中按先进先出整件移入暂存区，直至覆盖需求量。
// 任一组件总量不足则整体失败回滚。
func (l *Ledger) PrepareStagingArea(s repository.Set, owner, issuer string, number uint32) (Event, error) {
	wos := s.WorkOrders()
	wo, err := wos.GetWorkOrder(number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Event{}, ErrWorkOrderNotFound
		}
		return Event{}, err
	}
	if wo.Status != entity.WOStatusCreated {
		return Event{}, ErrWorkOrderState
	}

	inv := s.Inventory()
	var staged []entity.Item
	for _, c := range wo.Recipe.RequiredComponents {
		total, err := inv.GetTotal(owner, c.Sku)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return Event{}, err
		}
		if total < c.Qty {
			return Event{}, ErrInsufficientInventory
		}
		pool, err := inv.ItemsBySku(owner, c.Sku)
		if err != nil {
			return Event{}, err
		}
		fifoSort(pool)

		var covered uint32
		for _, it := range pool {
			if covered >= c.Qty {
				break
			}
			details := entity.AdjustDetails{
				Type:             entity.AdjustLocation,
				OriginalLocation: it.Location,
				NewLocation:      entity.LocationStaging,
				Reason:           reasonPrepareStaging,
			}
			moved, err := l.applyAdjust(s, owner, issuer, it.Sku, it.SerialNumber, details)
			if err != nil {
				return Event{}, err
			}
			staged = append(staged, *moved)
			covered = satAdd(covered, it.Qty)
		}
	}

	// 备料清单与BOM同界
	if len(staged) > entity.MaxBomLines {
		return Event{}, ErrBomConstructIssue
	}

	wo.Staged = staged
	wo.Status = entity.WOStatusStaged
	wo.UpdatedAt = time.Unix(0, l.now())
	if err := wos.PutWorkOrder(wo); err != nil {
		return Event{}, err
	}
	return Event{
		Type:  EventStagingPrepared,
		Owner: owner,
		Data: map[string]any{
			"work_order_number": number,
			"staged_items":      len(staged),
		},
	}, nil
}

// AssembleProduct 装配。在指定暂存库位按先进先出精确消耗配方需求量：整件耗尽的
// 条目从库存中销账、整行计入BOM并留归零审计记录，最后一件只消耗差额、余量退回
// 仓库区；暂存库位内本工单未消耗的整件同样退回。成品以新序列号入库到仓库区。
func (l *Ledger) AssembleProduct(s repository.Set, owner, assembler string, number uint32, serial uint32, staging entity.Location) (Event, error) {
	if !staging.Valid() {
		return Event{}, ErrLocationNotFound
	}
	wos := s.WorkOrders()
	wo, err := wos.GetWorkOrder(number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Event{}, ErrWorkOrderNotFound
		}
		return Event{}, err
	}
	if wo.Status != entity.WOStatusStaged {
		return Event{}, ErrWorkOrderState
	}

	inv := s.Inventory()
	hasStaging, err := inv.HasBucket(owner, staging)
	if err != nil {
		return Event{}, err
	}
	if !hasStaging {
		return Event{}, ErrStagingAreaNotFound
	}
	stagedNow, err := inv.BucketItems(owner, staging)
	if err != nil {
		return Event{}, err
	}
	bySku := make(map[string][]entity.Item)
	for _, it := range stagedNow {
		bySku[it.Sku] = append(bySku[it.Sku], it)
	}
	for sku := range bySku {
		fifoSort(bySku[sku])
	}

	// 同一SKU出现在多行时合并需求，消耗前先逐SKU核足量，避免消耗到一半才发现短缺
	need := make(map[string]uint32, len(wo.Recipe.RequiredComponents))
	var order []string
	for _, c := range wo.Recipe.RequiredComponents {
		if _, seen := need[c.Sku]; !seen {
			order = append(order, c.Sku)
		}
		need[c.Sku] = satAdd(need[c.Sku], c.Qty)
	}
	for sku, qty := range need {
		var available uint32
		for _, it := range bySku[sku] {
			available = satAdd(available, it.Qty)
		}
		if available < qty {
			return Event{}, ErrInsufficientInventory
		}
	}

	var bom entity.Bom
	for _, sku := range order {
		remaining := need[sku]
		pool := bySku[sku]
		for remaining > 0 {
			it := pool[0]
			if it.Qty <= remaining {
				// 整件耗尽，销账并留归零审计记录
				if err := inv.DeleteBucketItem(owner, staging, it.SerialNumber); err != nil {
					return Event{}, err
				}
				if err := inv.DeleteItem(owner, it.Sku, it.SerialNumber); err != nil {
					return Event{}, err
				}
				if err := l.subTotal(inv, owner, it.Sku, it.Qty); err != nil {
					return Event{}, err
				}
				consumed := it
				consumed.Qty = 0
				rec := entity.AdjustRecord{
					Owner:        owner,
					Sku:          it.Sku,
					SerialNumber: it.SerialNumber,
					Issuer:       assembler,
					Item:         consumed,
					Details: entity.AdjustDetails{
						Type:        entity.AdjustQuantity,
						OriginalQty: it.Qty,
						NewQty:      0,
						Reason:      reasonAssemble,
					},
					RecordedAt: time.Unix(0, l.now()),
				}
				if err := inv.AppendAdjust(&rec); err != nil {
					return Event{}, err
				}
				bom.Materials = append(bom.Materials, it)
				remaining -= it.Qty
				pool = pool[1:]
				continue
			}
			// 只消耗差额，余量退回仓库区
			line := it
			line.Qty = remaining
			bom.Materials = append(bom.Materials, line)
			qtyDetails := entity.AdjustDetails{
				Type:        entity.AdjustQuantity,
				OriginalQty: it.Qty,
				NewQty:      it.Qty - remaining,
				Reason:      reasonAssemble,
			}
			left, err := l.applyAdjust(s, owner, assembler, it.Sku, it.SerialNumber, qtyDetails)
			if err != nil {
				return Event{}, err
			}
			moveDetails := entity.AdjustDetails{
				Type:             entity.AdjustLocation,
				OriginalLocation: left.Location,
				NewLocation:      entity.LocationWarehouse,
				Reason:           reasonReturnToWarehouse,
			}
			if _, err := l.applyAdjust(s, owner, assembler, it.Sku, it.SerialNumber, moveDetails); err != nil {
				return Event{}, err
			}
			remaining = 0
			pool = pool[1:]
		}
		bySku[sku] = pool
	}
	if len(bom.Materials) > entity.MaxBomLines {
		return Event{}, ErrBomConstructIssue
	}

	// 本工单暂存但未消耗的整件退回仓库区
	for _, st := range wo.Staged {
		cur, err := inv.GetItem(owner, st.Sku, st.SerialNumber)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return Event{}, err
		}
		if cur.Location != staging {
			continue
		}
		moveDetails := entity.AdjustDetails{
			Type:             entity.AdjustLocation,
			OriginalLocation: cur.Location,
			NewLocation:      entity.LocationWarehouse,
			Reason:           reasonReturnToWarehouse,
		}
		if _, err := l.applyAdjust(s, owner, assembler, st.Sku, st.SerialNumber, moveDetails); err != nil {
			return Event{}, err
		}
	}

	// 成品入库。序列号冲突、库位满等失败会原样上抛并整体回滚。
	out := entity.Item{
		Owner:         owner,
		Sku:           wo.Recipe.Sku,
		SerialNumber:  serial,
		LotNumber:     number,
		Qty:           wo.Recipe.OutputQuantity,
		Location:      entity.LocationWarehouse,
		MovedBy:       assembler,
		InventoryType: entity.InvTypeFinishedGood,
	}
	if _, err := l.InsertItem(s, out); err != nil {
		return Event{}, err
	}
	stored, err := inv.GetItem(owner, out.Sku, serial)
	if err != nil {
		return Event{}, err
	}

	product := entity.AssembledProduct{
		Owner:        owner,
		Sku:          out.Sku,
		SerialNumber: serial,
		WorkOrder:    number,
		Item:         *stored,
		Bom:          bom,
		AssembledAt:  time.Unix(0, l.now()),
	}
	if err := wos.PutAssembled(&product); err != nil {
		return Event{}, err
	}

	wo.Status = entity.WOStatusAssembled
	wo.UpdatedAt = time.Unix(0, l.now())
	if err := wos.PutWorkOrder(wo); err != nil {
		return Event{}, err
	}
	return Event{
		Type:  EventProductAssembled,
		Owner: owner,
		Data: map[string]any{
			"work_order_number": number,
			"sku":               out.Sku,
			"serial_number":     serial,
			"bom_lines":         len(bom.Materials),
		},
	}, nil
}

// fifoSort 先进先出排序，入库时间相同按序列号
func fifoSort(items []entity.Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt != items[j].CreatedAt {
			return items[i].CreatedAt < items[j].CreatedAt
		}
		return items[i].SerialNumber < items[j].SerialNumber
	})
}
