package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bitfantasy/nimo-wms/internal/wms/entity"
	"github.com/bitfantasy/nimo-wms/internal/wms/repository"
)

func newTestLedger() *Ledger {
	var tick int64
	return NewWithClock(func() int64 {
		tick++
		return tick
	})
}

func mustInsert(t *testing.T, l *Ledger, s repository.Set, owner, sku string, serial, qty uint32, loc entity.Location) {
	t.Helper()
	item := entity.Item{Owner: owner, Sku: sku, SerialNumber: serial, Qty: qty, Location: loc}
	if _, err := l.InsertItem(s, item); err != nil {
		t.Fatalf("InsertItem(%s/%d) failed: %v", sku, serial, err)
	}
}

func totalOf(t *testing.T, s repository.Set, owner, sku string) uint32 {
	t.Helper()
	total, err := s.Inventory().GetTotal(owner, sku)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0
		}
		t.Fatalf("GetTotal failed: %v", err)
	}
	return total
}

func TestInsertItemUpdatesAggregateAndBucket(t *testing.T) {
	l := newTestLedger()
	s := repository.NewMemorySet()

	mustInsert(t, l, s, "acme", "BOLT-M8", 1, 50, entity.LocationWarehouse)
	mustInsert(t, l, s, "acme", "BOLT-M8", 2, 30, entity.LocationWarehouse)

	if got := totalOf(t, s, "acme", "BOLT-M8"); got != 80 {
		t.Errorf("Expected aggregate 80, got %d", got)
	}

	items, err := s.Inventory().BucketItems("acme", entity.LocationWarehouse)
	if err != nil {
		t.Fatalf("BucketItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items in warehouse bucket, got %d", len(items))
	}

	// FIFO timestamps are strictly increasing
	if items[0].CreatedAt >= items[1].CreatedAt {
		t.Errorf("Expected increasing created_at, got %d then %d", items[0].CreatedAt, items[1].CreatedAt)
	}
}

func TestInsertItemValidation(t *testing.T) {
	l := newTestLedger()
	s := repository.NewMemorySet()

	longSku := "THIS-SKU-IS-WAY-TOO-LONG"
	if _, err := l.InsertItem(s, entity.Item{Owner: "acme", Sku: longSku, SerialNumber: 1, Qty: 1, Location: entity.LocationWarehouse}); !errors.Is(err, ErrInvalidSkuLength) {
		t.Errorf("Expected ErrInvalidSkuLength for long sku, got %v", err)
	}
	if _, err := l.InsertItem(s, entity.Item{Owner: "acme", Sku: "", SerialNumber: 1, Qty: 1, Location: entity.LocationWarehouse}); !errors.Is(err, ErrInvalidSkuLength) {
		t.Errorf("Expected ErrInvalidSkuLength for empty sku, got %v", err)
	}
	if _, err := l.InsertItem(s, entity.Item{Owner: "acme", Sku: "BOLT-M8", SerialNumber: 1, Qty: 1, Location: entity.Location("BASEMENT")}); !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("Expected ErrLocationNotFound, got %v", err)
	}

	mustInsert(t, l, s, "acme", "BOLT-M8", 7, 5, entity.LocationWarehouse)
	if _, err := l.InsertItem(s, entity.Item{Owner: "acme", Sku: "BOLT-M8", SerialNumber: 7, Qty: 5, Location: entity.LocationWarehouse}); !errors.Is(err, ErrDuplicateSerial) {
		t.Errorf("Expected ErrDuplicateSerial, got %v", err)
	}
	// Same serial under a different owner is fine
	mustInsert(t, l, s, "globex", "BOLT-M8", 7, 5, entity.LocationWarehouse)
}

func TestInsertItemLocationCapacity(t *testing.T) {
	l := newTestLedger()
	s := repository.NewMemorySet()

	for i := 0; i < MaxLocationItems; i++ {
		sku := fmt.Sprintf("SKU-%03d", i%500)
		mustInsert(t, l, s, "acme", sku, uint32(i+1), 1, entity.LocationReceiving)
	}
	_, err := l.InsertItem(s, entity.Item{Owner: "acme", Sku: "SKU-000", SerialNumber: 9999, Qty: 1, Location: entity.LocationReceiving})
	if !errors.Is(err, ErrInventoryFull) {
		t.Errorf("Expected ErrInventoryFull, got %v", err)
	}
}

func TestScrapItemRemovesEverywhere(t *testing.T) {
	l := newTestLedger()
	s := repository.NewMemorySet()

	mustInsert(t, l, s, "acme", "BOLT-M8", 1, 50, entity.LocationWarehouse)
	details := entity.ScrapDetails{Issuer: "acme", Reason: "water damage"}
	if _, err := l.ScrapItem(s, "acme", "BOLT-M8", 1, details); err != nil {
		t.Fatalf("ScrapItem failed: %v", err)
	}

	if _, err := s.Inventory().GetItem("acme", "BOLT-M8", 1); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected item gone after scrap, got %v", err)
	}
	// Aggregate for the sku is removed once it hits zero
	if _, err := s.Inventory().GetTotal("acme", "BOLT-M8"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected aggregate removed, got %v", err)
	}
	// Bucket still exists, just empty
	items, err := s.Inventory().BucketItems("acme", entity.LocationWarehouse)
	if err != nil {
		t.Fatalf("Expected warehouse bucket to survive scrap, got %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty bucket, got %d items", len(items))
	}

	recs, err := s.Inventory().ScrapRecords("acme")
	if err != nil || len(recs) != 1 {
		t.Fatalf("Expected 1 scrap record, got %d (err %v)", len(recs), err)
	}
	if recs[0].Item.Qty != 50 {
		t.Errorf("Expected scrap snapshot qty 50, got %d", recs[0].Item.Qty)
	}

	if _, err := l.ScrapItem(s, "acme", "BOLT-M8", 1, details); !errors.Is(err, ErrInventoryNotFound) {
		t.Errorf("Expected ErrInventoryNotFound on double scrap, got %v", err)
	}
}

func TestScrapReasonTooLong(t *testing.T) {
	l := newTestLedger()
	s := repository.NewMemorySet()
	mustInsert(t, l, s, "acme", "BOLT-M8", 1, 50, entity.LocationWarehouse)

	long := make([]byte, entity.MaxReasonLen+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err := l.ScrapItem(s, "acme", "BOLT-M8", 1, entity.ScrapDetails{Reason: string(long)})
	if !errors.Is(err, ErrDescriptionTooLong) {
		t.Errorf("Expected ErrDescriptionTooLong, got %v", err)
	}
}

func TestMoveItemSwitchesBuckets(t *testing.T) {
	l := newTestLedger()
	s := repository.NewMemorySet()
	mustInsert(t, l, s, "acme", "BOLT-M8", 1, 50, entity.LocationWarehouse)

	if _, err := l.MoveItem(s, "acme", "forklift-op", "BOLT-M8", 1, entity.LocationShipping, "customer order"); err != nil {
		t.Fatalf("MoveItem failed: %v", err)
	}

	item, err := s.Inventory().GetItem("acme", "BOLT-M8", 1)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if item.Location != entity.LocationShipping {
		t.Errorf("Expected SHIPPING, got %s", item.Location)
	}
	if item.MovedBy != "forklift-op" {
		t.Errorf("Expected moved_by forklift-op, got %s", item.MovedBy)
	}

	warehouse, _ := s.Inventory().BucketItems("acme", entity.LocationWarehouse)
	if len(warehouse) != 0 {
		t.Errorf("Expected empty warehouse bucket, got %d", len(warehouse))
	}
	shipping, err := s.Inventory().BucketItems("acme", entity.LocationShipping)
	if err != nil || len(shipping) != 1 {
		t.Fatalf("Expected 1 item in shipping bucket, got %d (err %v)", len(shipping), err)
	}

	// Move leaves a location-adjust audit record
	trail, err := s.Inventory().AdjustTrail("acme", "BOLT-M8", 1)
	if err != nil || len(trail) != 1 {
		t.Fatalf("Expected 1 audit record, got %d (err %v)", len(trail), err)
	}
	if trail[0].Details.Type != entity.AdjustLocation {
		t.Errorf("Expected LOCATION audit, got %s", trail[0].Details.Type)
	}

	if _, err := l.MoveItem(s, "acme", "op", "NOPE", 1, entity.LocationShipping, "r"); !errors.Is(err, ErrInventoryNotFound) {
		t.Errorf("Expected ErrInventoryNotFound, got %v", err)
	}
}

func TestAdjustQuantity(t *testing.T) {
	l := newTestLedger()
	s := repository.NewMemorySet()
	mustInsert(t, l, s, "acme", "BOLT-M8", 1, 50, entity.LocationWarehouse)

	// Stale original quantity is rejected
	_, err := l.AdjustItem(s, "acme", "auditor", "BOLT-M8", 1, entity.AdjustDetails{
		Type: entity.AdjustQuantity, OriginalQty: 40, NewQty: 45, Reason: "cycle count",
	})
	if !errors.Is(err, ErrInvalidAdjustDetails) {
		t.Errorf("Expected ErrInvalidAdjustDetails for stale original, got %v", err)
	}

	// Adjusting to zero is rejected, removal goes through scrap
	_, err = l.AdjustItem(s, "acme", "auditor", "BOLT-M8", 1, entity.AdjustDetails{
		Type: entity.AdjustQuantity, OriginalQty: 50, NewQty: 0, Reason: "cycle count",
	})
	if !errors.Is(err, ErrInvalidAdjustDetails) {
		t.Errorf("Expected ErrInvalidAdjustDetails for zero qty, got %v", err)
	}

	if _, err := l.AdjustItem(s, "acme", "auditor", "BOLT-M8", 1, entity.AdjustDetails{
		Type: entity.AdjustQuantity, OriginalQty: 50, NewQty: 45, Reason: "cycle count",
	}); err != nil {
		t.Fatalf("AdjustItem failed: %v", err)
	}

	item, _ := s.Inventory().GetItem("acme", "BOLT-M8", 1)
	if item.Qty != 45 {
		t.Errorf("Expected qty 45, got %d", item.Qty)
	}
	if got := totalOf(t, s, "acme", "BOLT-M8"); got != 45 {
		t.Errorf("Expected aggregate 45, got %d", got)
	}

	// Audit sequence is monotonic per item
	if _, err := l.AdjustItem(s, "acme", "auditor", "BOLT-M8", 1, entity.AdjustDetails{
		Type: entity.AdjustQuantity, OriginalQty: 45, NewQty: 60, Reason: "recount",
	}); err != nil {
		t.Fatalf("second AdjustItem failed: %v", err)
	}
	trail, _ := s.Inventory().AdjustTrail("acme", "BOLT-M8", 1)
	if len(trail) != 2 || trail[0].Seq != 1 || trail[1].Seq != 2 {
		t.Fatalf("Expected audit seq 1,2, got %+v", trail)
	}
	if got := totalOf(t, s, "acme", "BOLT-M8"); got != 60 {
		t.Errorf("Expected aggregate 60, got %d", got)
	}
}

func TestAdjustRejectsNonQuantityDetails(t *testing.T) {
	l := newTestLedger()
	s := repository.NewMemorySet()
	mustInsert(t, l, s, "acme", "BOLT-M8", 1, 50, entity.LocationWarehouse)

	// Location changes go through MoveItem, an adjust with location details
	// is rejected outright
	_, err := l.AdjustItem(s, "acme", "op", "BOLT-M8", 1, entity.AdjustDetails{
		Type: entity.AdjustLocation, OriginalLocation: entity.LocationWarehouse,
		NewLocation: entity.LocationProduction, Reason: "r",
	})
	if !errors.Is(err, ErrInvalidAdjustDetails) {
		t.Errorf("Expected ErrInvalidAdjustDetails for location details, got %v", err)
	}
	item, _ := s.Inventory().GetItem("acme", "BOLT-M8", 1)
	if item.Location != entity.LocationWarehouse {
		t.Errorf("Expected item untouched in WAREHOUSE, got %s", item.Location)
	}

	_, err = l.AdjustItem(s, "acme", "op", "BOLT-M8", 1, entity.AdjustDetails{Type: "WEIGHT", Reason: "r"})
	if !errors.Is(err, ErrInvalidAdjustDetails) {
		t.Errorf("Expected ErrInvalidAdjustDetails for unknown type, got %v", err)
	}

	// MoveItem still validates the destination
	if _, err := l.MoveItem(s, "acme", "op", "BOLT-M8", 1, entity.Location("ATTIC"), "r"); !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("Expected ErrLocationNotFound from MoveItem, got %v", err)
	}
}

func TestScrapAggregateUnderflow(t *testing.T) {
	l := newTestLedger()
	s := repository.NewMemorySet()
	mustInsert(t, l, s, "acme", "BOLT-M8", 1, 10, entity.LocationWarehouse)

	// Force the aggregate below the item quantity, as a corrupted ledger would be
	if err := s.Inventory().PutTotal("acme", "BOLT-M8", 5); err != nil {
		t.Fatalf("PutTotal failed: %v", err)
	}

	err := s.Atomically(context.Background(), func(tx repository.Set) error {
		_, err := l.ScrapItem(tx, "acme", "BOLT-M8", 1, entity.ScrapDetails{Reason: "rust"})
		return err
	})
	if !errors.Is(err, ErrInsufficientInventory) {
		t.Fatalf("Expected ErrInsufficientInventory on aggregate underflow, got %v", err)
	}

	// Rolled back: the item is still on the books
	if _, err := s.Inventory().GetItem("acme", "BOLT-M8", 1); err != nil {
		t.Errorf("Expected item to survive the failed scrap, got %v", err)
	}
}

func TestAggregateMatchesItemSum(t *testing.T) {
	l := newTestLedger()
	s := repository.NewMemorySet()

	mustInsert(t, l, s, "acme", "NUT-M8", 1, 10, entity.LocationWarehouse)
	mustInsert(t, l, s, "acme", "NUT-M8", 2, 20, entity.LocationReceiving)
	mustInsert(t, l, s, "acme", "NUT-M8", 3, 30, entity.LocationWarehouse)

	if _, err := l.MoveItem(s, "acme", "op", "NUT-M8", 2, entity.LocationWarehouse, "putaway"); err != nil {
		t.Fatalf("MoveItem failed: %v", err)
	}
	if _, err := l.AdjustItem(s, "acme", "op", "NUT-M8", 3, entity.AdjustDetails{
		Type: entity.AdjustQuantity, OriginalQty: 30, NewQty: 25, Reason: "shrinkage",
	}); err != nil {
		t.Fatalf("AdjustItem failed: %v", err)
	}
	if _, err := l.ScrapItem(s, "acme", "NUT-M8", 1, entity.ScrapDetails{Reason: "rust"}); err != nil {
		t.Fatalf("ScrapItem failed: %v", err)
	}

	items, _ := s.Inventory().ItemsBySku("acme", "NUT-M8")
	var sum uint32
	for _, it := range items {
		sum += it.Qty
	}
	if got := totalOf(t, s, "acme", "NUT-M8"); got != sum {
		t.Errorf("Aggregate %d does not match item sum %d", got, sum)
	}
	if sum != 45 {
		t.Errorf("Expected item sum 45, got %d", sum)
	}
}
