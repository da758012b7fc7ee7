package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bitfantasy/nimo-wms/internal/wms/entity"
)

// MemorySet 内存实现，用于单元测试与本地演示。
// Atomically 通过全量快照实现回滚：回调报错时整组写入还原。
type MemorySet struct {
	mu    *sync.RWMutex
	state *memState
	inTx  bool
}

func NewMemorySet() *MemorySet {
	return &MemorySet{
		mu:    &sync.RWMutex{},
		state: newMemState(),
	}
}

func (m *MemorySet) Inventory() InventoryRepository { return &memInventory{m.state, m.locker()} }
func (m *MemorySet) Catalog() CatalogRepository     { return &memCatalog{m.state, m.locker()} }
func (m *MemorySet) WorkOrders() WorkOrderRepository {
	return &memWorkOrders{m.state, m.locker()}
}

func (m *MemorySet) Atomically(ctx context.Context, fn func(Set) error) error {
	if m.inTx {
		// 事务内嵌套调用直接复用当前事务
		return fn(m)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.state.clone()
	tx := &MemorySet{mu: m.mu, state: m.state, inTx: true}
	if err := fn(tx); err != nil {
		*m.state = *snap
		return err
	}
	return nil
}

type rwLocker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// noLock 事务视图内免锁（外层 Atomically 已持有写锁）
type noLock struct{}

func (noLock) Lock()    {}
func (noLock) Unlock()  {}
func (noLock) RLock()   {}
func (noLock) RUnlock() {}

func (m *MemorySet) locker() rwLocker {
	if m.inTx {
		return noLock{}
	}
	return m.mu
}

type memState struct {
	items      map[string]entity.Item
	totals     map[string]uint32
	buckets    map[string]map[uint32]entity.Item
	adjusts    map[string][]entity.AdjustRecord
	scraps     map[string]entity.ScrapRecord
	recipes    map[string]entity.Recipe
	materials  map[string]entity.Material
	workOrders map[uint32]entity.WorkOrder
	assembled  map[string]entity.AssembledProduct
}

func newMemState() *memState {
	return &memState{
		items:      make(map[string]entity.Item),
		totals:     make(map[string]uint32),
		buckets:    make(map[string]map[uint32]entity.Item),
		adjusts:    make(map[string][]entity.AdjustRecord),
		scraps:     make(map[string]entity.ScrapRecord),
		recipes:    make(map[string]entity.Recipe),
		materials:  make(map[string]entity.Material),
		workOrders: make(map[uint32]entity.WorkOrder),
		assembled:  make(map[string]entity.AssembledProduct),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.totals {
		c.totals[k] = v
	}
	for k, b := range s.buckets {
		nb := make(map[uint32]entity.Item, len(b))
		for serial, it := range b {
			nb[serial] = it
		}
		c.buckets[k] = nb
	}
	for k, recs := range s.adjusts {
		c.adjusts[k] = append([]entity.AdjustRecord(nil), recs...)
	}
	for k, v := range s.scraps {
		c.scraps[k] = v
	}
	for k, v := range s.recipes {
		c.recipes[k] = cloneRecipe(v)
	}
	for k, v := range s.materials {
		c.materials[k] = v
	}
	for k, v := range s.workOrders {
		c.workOrders[k] = cloneWorkOrder(v)
	}
	for k, v := range s.assembled {
		v.Bom.Materials = append([]entity.Item(nil), v.Bom.Materials...)
		c.assembled[k] = v
	}
	return c
}

func cloneRecipe(r entity.Recipe) entity.Recipe {
	r.RequiredComponents = append([]entity.RecipeComponent(nil), r.RequiredComponents...)
	return r
}

func cloneWorkOrder(wo entity.WorkOrder) entity.WorkOrder {
	wo.Recipe = cloneRecipe(wo.Recipe)
	wo.Staged = append([]entity.Item(nil), wo.Staged...)
	return wo
}

func itemKey(owner, sku string, serial uint32) string {
	return fmt.Sprintf("%s|%s|%d", owner, sku, serial)
}

func skuKey(owner, sku string) string {
	return owner + "|" + sku
}

func bucketKey(owner string, loc entity.Location) string {
	return owner + "|" + string(loc)
}

// ---- 库存 ----

type memInventory struct {
	s  *memState
	lk rwLocker
}

func (r *memInventory) GetItem(owner, sku string, serial uint32) (*entity.Item, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	it, ok := r.s.items[itemKey(owner, sku, serial)]
	if !ok {
		return nil, ErrNotFound
	}
	return &it, nil
}

func (r *memInventory) PutItem(item *entity.Item) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	r.s.items[itemKey(item.Owner, item.Sku, item.SerialNumber)] = *item
	return nil
}

func (r *memInventory) DeleteItem(owner, sku string, serial uint32) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	delete(r.s.items, itemKey(owner, sku, serial))
	return nil
}

func (r *memInventory) ItemsBySku(owner, sku string) ([]entity.Item, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	out := []entity.Item{}
	for _, it := range r.s.items {
		if it.Owner == owner && it.Sku == sku {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNumber < out[j].SerialNumber })
	return out, nil
}

func (r *memInventory) ItemsByOwner(owner string) ([]entity.Item, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	out := []entity.Item{}
	for _, it := range r.s.items {
		if it.Owner == owner {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sku != out[j].Sku {
			return out[i].Sku < out[j].Sku
		}
		return out[i].SerialNumber < out[j].SerialNumber
	})
	return out, nil
}

func (r *memInventory) GetTotal(owner, sku string) (uint32, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	qty, ok := r.s.totals[skuKey(owner, sku)]
	if !ok {
		return 0, ErrNotFound
	}
	return qty, nil
}

func (r *memInventory) PutTotal(owner, sku string, qty uint32) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	r.s.totals[skuKey(owner, sku)] = qty
	return nil
}

func (r *memInventory) DeleteTotal(owner, sku string) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	delete(r.s.totals, skuKey(owner, sku))
	return nil
}

func (r *memInventory) HasBucket(owner string, loc entity.Location) (bool, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	_, ok := r.s.buckets[bucketKey(owner, loc)]
	return ok, nil
}

func (r *memInventory) EnsureBucket(owner string, loc entity.Location) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	k := bucketKey(owner, loc)
	if _, ok := r.s.buckets[k]; !ok {
		r.s.buckets[k] = make(map[uint32]entity.Item)
	}
	return nil
}

func (r *memInventory) BucketLen(owner string, loc entity.Location) (int, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	return len(r.s.buckets[bucketKey(owner, loc)]), nil
}

func (r *memInventory) BucketItems(owner string, loc entity.Location) ([]entity.Item, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	b, ok := r.s.buckets[bucketKey(owner, loc)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]entity.Item, 0, len(b))
	for _, it := range b {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNumber < out[j].SerialNumber })
	return out, nil
}

func (r *memInventory) PutBucketItem(owner string, loc entity.Location, item entity.Item) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	k := bucketKey(owner, loc)
	b, ok := r.s.buckets[k]
	if !ok {
		b = make(map[uint32]entity.Item)
		r.s.buckets[k] = b
	}
	b[item.SerialNumber] = item
	return nil
}

func (r *memInventory) DeleteBucketItem(owner string, loc entity.Location, serial uint32) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	if b, ok := r.s.buckets[bucketKey(owner, loc)]; ok {
		delete(b, serial)
	}
	return nil
}

func (r *memInventory) AppendAdjust(rec *entity.AdjustRecord) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	k := itemKey(rec.Owner, rec.Sku, rec.SerialNumber)
	rec.Seq = uint64(len(r.s.adjusts[k]) + 1)
	r.s.adjusts[k] = append(r.s.adjusts[k], *rec)
	return nil
}

func (r *memInventory) AdjustTrail(owner, sku string, serial uint32) ([]entity.AdjustRecord, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	recs := r.s.adjusts[itemKey(owner, sku, serial)]
	return append([]entity.AdjustRecord{}, recs...), nil
}

func (r *memInventory) PutScrap(rec *entity.ScrapRecord) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	r.s.scraps[itemKey(rec.Owner, rec.Sku, rec.SerialNumber)] = *rec
	return nil
}

func (r *memInventory) ScrapRecords(owner string) ([]entity.ScrapRecord, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	out := []entity.ScrapRecord{}
	for _, rec := range r.s.scraps {
		if rec.Owner == owner {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sku != out[j].Sku {
			return out[i].Sku < out[j].Sku
		}
		return out[i].SerialNumber < out[j].SerialNumber
	})
	return out, nil
}

// ---- 主数据 ----

type memCatalog struct {
	s  *memState
	lk rwLocker
}

func (r *memCatalog) GetRecipe(sku string) (*entity.Recipe, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	rec, ok := r.s.recipes[sku]
	if !ok {
		return nil, ErrNotFound
	}
	rec = cloneRecipe(rec)
	return &rec, nil
}

func (r *memCatalog) PutRecipe(rec *entity.Recipe) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	r.s.recipes[rec.Sku] = cloneRecipe(*rec)
	return nil
}

func (r *memCatalog) Recipes() ([]entity.Recipe, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	out := make([]entity.Recipe, 0, len(r.s.recipes))
	for _, rec := range r.s.recipes {
		out = append(out, cloneRecipe(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sku < out[j].Sku })
	return out, nil
}

func (r *memCatalog) GetMaterial(sku string) (*entity.Material, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	m, ok := r.s.materials[sku]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r *memCatalog) PutMaterial(m *entity.Material) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	r.s.materials[m.Sku] = *m
	return nil
}

func (r *memCatalog) DeleteMaterial(sku string) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	delete(r.s.materials, sku)
	return nil
}

func (r *memCatalog) Materials() ([]entity.Material, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	out := make([]entity.Material, 0, len(r.s.materials))
	for _, m := range r.s.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sku < out[j].Sku })
	return out, nil
}

// ---- 工单 ----

type memWorkOrders struct {
	s  *memState
	lk rwLocker
}

func (r *memWorkOrders) GetWorkOrder(number uint32) (*entity.WorkOrder, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	wo, ok := r.s.workOrders[number]
	if !ok {
		return nil, ErrNotFound
	}
	wo = cloneWorkOrder(wo)
	return &wo, nil
}

func (r *memWorkOrders) PutWorkOrder(wo *entity.WorkOrder) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	r.s.workOrders[wo.WorkOrderNumber] = cloneWorkOrder(*wo)
	return nil
}

func (r *memWorkOrders) WorkOrders() ([]entity.WorkOrder, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	out := make([]entity.WorkOrder, 0, len(r.s.workOrders))
	for _, wo := range r.s.workOrders {
		out = append(out, cloneWorkOrder(wo))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkOrderNumber < out[j].WorkOrderNumber })
	return out, nil
}

func (r *memWorkOrders) PutAssembled(p *entity.AssembledProduct) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	cp := *p
	cp.Bom.Materials = append([]entity.Item(nil), p.Bom.Materials...)
	r.s.assembled[itemKey(p.Owner, p.Sku, p.SerialNumber)] = cp
	return nil
}

func (r *memWorkOrders) GetAssembled(owner, sku string, serial uint32) (*entity.AssembledProduct, error) {
	r.lk.RLock()
	defer r.lk.RUnlock()
	p, ok := r.s.assembled[itemKey(owner, sku, serial)]
	if !ok {
		return nil, ErrNotFound
	}
	p.Bom.Materials = append([]entity.Item(nil), p.Bom.Materials...)
	return &p, nil
}
