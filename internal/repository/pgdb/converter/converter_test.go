package converter

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCartConverter_ToEntityKeepsOneLinePerProduct(t *testing.T) {
	model := &CartModel{SessionID: "s1", Lines: []CartLineModel{
		{ProductID: "p1", Name: "Apple", Price: decimal.RequireFromString("0.50"), Quantity: 1},
		{ProductID: "p1", Name: "Apple", Price: decimal.RequireFromString("0.50"), Quantity: 2},
		{ProductID: "p2", Name: "Milk", Price: decimal.RequireFromString("1.29"), Quantity: 0},
		{ProductID: "p3", Name: "Bread", Price: decimal.RequireFromString("2.10"), Quantity: 1},
	}}

	cart := CartConverter{}.ToEntity(model)
	if len(cart.Lines) != 2 || cart.Lines[0].ProductID != "p1" || cart.Lines[1].ProductID != "p3" {
		t.Fatalf("unexpected lines %+v", cart.Lines)
	}
	if cart.Lines[0].Quantity != 3 {
		t.Fatalf("p1 quantity = %d, want 3", cart.Lines[0].Quantity)
	}
}
