package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-wms/internal/wms/entity"
)

func TestMemoryAtomicallyCommitsAndRollsBack(t *testing.T) {
	s := NewMemorySet()
	boom := errors.New("boom")

	// Rollback: nothing written inside a failed transaction survives
	err := s.Atomically(context.Background(), func(tx Set) error {
		if err := tx.Inventory().PutItem(&entity.Item{Owner: "acme", Sku: "A", SerialNumber: 1, Qty: 5, Location: entity.LocationWarehouse}); err != nil {
			return err
		}
		if err := tx.Inventory().PutTotal("acme", "A", 5); err != nil {
			return err
		}
		if err := tx.Catalog().PutMaterial(&entity.Material{Sku: "A", Name: "a"}); err != nil {
			return err
		}
		if err := tx.WorkOrders().PutWorkOrder(&entity.WorkOrder{WorkOrderNumber: 1, Status: entity.WOStatusCreated}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if _, err := s.Inventory().GetItem("acme", "A", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected item rolled back, got %v", err)
	}
	if _, err := s.Inventory().GetTotal("acme", "A"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected total rolled back, got %v", err)
	}
	if _, err := s.Catalog().GetMaterial("A"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected material rolled back, got %v", err)
	}
	if _, err := s.WorkOrders().GetWorkOrder(1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected work order rolled back, got %v", err)
	}

	// Commit: successful transaction is visible afterwards
	err = s.Atomically(context.Background(), func(tx Set) error {
		return tx.Inventory().PutItem(&entity.Item{Owner: "acme", Sku: "A", SerialNumber: 1, Qty: 5, Location: entity.LocationWarehouse})
	})
	if err != nil {
		t.Fatalf("Atomically failed: %v", err)
	}
	if _, err := s.Inventory().GetItem("acme", "A", 1); err != nil {
		t.Errorf("Expected committed item, got %v", err)
	}
}

func TestMemoryNestedAtomicallyReusesTransaction(t *testing.T) {
	s := NewMemorySet()
	err := s.Atomically(context.Background(), func(tx Set) error {
		return tx.Atomically(context.Background(), func(inner Set) error {
			return inner.Inventory().PutTotal("acme", "A", 7)
		})
	})
	if err != nil {
		t.Fatalf("nested Atomically failed: %v", err)
	}
	total, err := s.Inventory().GetTotal("acme", "A")
	if err != nil || total != 7 {
		t.Errorf("Expected total 7, got %d (err %v)", total, err)
	}
}

func TestMemoryBucketExistenceSemantics(t *testing.T) {
	s := NewMemorySet()
	inv := s.Inventory()

	// Never-created bucket: lookup fails, membership is distinguishable from empty
	if ok, _ := inv.HasBucket("acme", entity.LocationStaging); ok {
		t.Error("Expected no staging bucket initially")
	}
	if _, err := inv.BucketItems("acme", entity.LocationStaging); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing bucket, got %v", err)
	}

	item := entity.Item{Owner: "acme", Sku: "A", SerialNumber: 1, Qty: 5, Location: entity.LocationStaging}
	if err := inv.PutBucketItem("acme", entity.LocationStaging, item); err != nil {
		t.Fatalf("PutBucketItem failed: %v", err)
	}
	if err := inv.DeleteBucketItem("acme", entity.LocationStaging, 1); err != nil {
		t.Fatalf("DeleteBucketItem failed: %v", err)
	}

	// Emptied bucket still exists
	if ok, _ := inv.HasBucket("acme", entity.LocationStaging); !ok {
		t.Error("Expected staging bucket to survive emptying")
	}
	items, err := inv.BucketItems("acme", entity.LocationStaging)
	if err != nil {
		t.Fatalf("BucketItems failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty bucket, got %d items", len(items))
	}
}

func TestMemoryAppendAdjustSequences(t *testing.T) {
	s := NewMemorySet()
	inv := s.Inventory()

	for i := 0; i < 3; i++ {
		rec := entity.AdjustRecord{Owner: "acme", Sku: "A", SerialNumber: 1, Issuer: "op"}
		if err := inv.AppendAdjust(&rec); err != nil {
			t.Fatalf("AppendAdjust failed: %v", err)
		}
		if rec.Seq != uint64(i+1) {
			t.Errorf("Expected seq %d, got %d", i+1, rec.Seq)
		}
	}
	trail, err := inv.AdjustTrail("acme", "A", 1)
	if err != nil || len(trail) != 3 {
		t.Fatalf("Expected 3 records, got %d (err %v)", len(trail), err)
	}
}
