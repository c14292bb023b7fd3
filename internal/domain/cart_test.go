package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func snapshot(lines ...CartLine) Cart {
	return Cart{Lines: lines}
}

func TestCart_ReadOnlyMethodsOnValue(t *testing.T) {
	apple := CartLine{ProductID: "p1", Price: decimal.RequireFromString("0.50"), Quantity: 2}
	milk := CartLine{ProductID: "p2", Price: decimal.RequireFromString("1.29"), Quantity: 1}

	if !snapshot().IsEmpty() {
		t.Fatal("empty cart reported as non-empty")
	}
	if snapshot(apple, milk).ItemCount() != 3 {
		t.Fatalf("item count = %d, want 3", snapshot(apple, milk).ItemCount())
	}
	if snapshot(apple, milk).Find("p2") != 1 || snapshot(apple).Find("p2") != -1 {
		t.Fatal("find returned wrong index")
	}
	if _, ok := snapshot(apple).Line("p1"); !ok {
		t.Fatal("line p1 not found")
	}
}

func TestCart_CloneIsIndependent(t *testing.T) {
	orig := snapshot(CartLine{ProductID: "p1", Quantity: 1})
	clone := orig.Clone()
	clone.Lines[0].Quantity = 7

	if orig.Lines[0].Quantity != 1 {
		t.Fatalf("clone shares lines with original")
	}
}

func TestRestoreCart(t *testing.T) {
	cart := RestoreCart([]CartLine{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "", Quantity: 4},
		{ProductID: "p2", Quantity: -2},
		{ProductID: "p1", Quantity: 2},
	})

	if len(cart.Lines) != 1 {
		t.Fatalf("unexpected lines %+v", cart.Lines)
	}
	if line, _ := cart.Line("p1"); line.Quantity != 3 {
		t.Fatalf("p1 quantity = %d, want 3", line.Quantity)
	}
}
