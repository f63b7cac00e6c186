package rest

import (
	"errors"
	"testing"

	"github.com/voltmart/storefront/internal/core/domain"
)

func TestParseCartPayload_ItemsWithTotalAmount(t *testing.T) {
	raw := []byte(`{"items":[{"productId":"A","quantity":2},{"productId":"B"}],"totalAmount":500}`)

	snap, err := ParseCartPayload(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(snap.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(snap.Items))
	}
	if snap.Total != 500 {
		t.Fatalf("expected total 500, got %v", snap.Total)
	}
	if got := domain.ItemCount(snap.Items); got != 3 {
		t.Fatalf("expected count 3 (missing quantity defaults to 1), got %d", got)
	}
}

func TestParseCartPayload_DataArrayWithTotal(t *testing.T) {
	raw := []byte(`{"data":[{"productId":"A","quantity":1}],"total":99.5}`)

	snap, err := ParseCartPayload(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].ProductID != "A" {
		t.Fatalf("unexpected items: %+v", snap.Items)
	}
	if snap.Total != 99.5 {
		t.Fatalf("expected total 99.5, got %v", snap.Total)
	}
}

func TestParseCartPayload_ProductsWithTotalValue(t *testing.T) {
	raw := []byte(`{"products":[{"productId":"X","quantity":4}],"totalValue":12}`)

	snap, err := ParseCartPayload(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 4 {
		t.Fatalf("unexpected items: %+v", snap.Items)
	}
	if snap.Total != 12 {
		t.Fatalf("expected total 12, got %v", snap.Total)
	}
}

func TestParseCartPayload_NestedDataEnvelope(t *testing.T) {
	raw := []byte(`{"data":{"data":[{"productId":"N","quantity":2}]},"totalAmount":40}`)

	snap, err := ParseCartPayload(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].ProductID != "N" {
		t.Fatalf("unexpected items: %+v", snap.Items)
	}
}

func TestParseCartPayload_TotalPreferenceOrder(t *testing.T) {
	raw := []byte(`{"items":[],"totalAmount":1,"total":2,"totalValue":3}`)

	snap, err := ParseCartPayload(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if snap.Total != 1 {
		t.Fatalf("totalAmount must win, got %v", snap.Total)
	}
}

func TestParseCartPayload_FailureFlagYieldsEmpty(t *testing.T) {
	raw := []byte(`{"success":false,"items":[{"productId":"A","quantity":9}],"totalAmount":999}`)

	snap, err := ParseCartPayload(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(snap.Items) != 0 || snap.Total != 0 {
		t.Fatalf("failure payload must yield empty snapshot, got %+v", snap)
	}
}

func TestParseCartPayload_NoTotalsDefaultsToZero(t *testing.T) {
	raw := []byte(`{"items":[{"productId":"A","quantity":1}]}`)

	snap, err := ParseCartPayload(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if snap.Total != 0 {
		t.Fatalf("expected 0 total, got %v", snap.Total)
	}
}

func TestParseCartPayload_Malformed(t *testing.T) {
	_, err := ParseCartPayload([]byte(`not json`))
	if !errors.Is(err, domain.ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}
