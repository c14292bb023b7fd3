package domain

import "github.com/shopspring/decimal"

// CartLine — позиция корзины: снимок товара на момент добавления и количество.
// Quantity всегда >= 1, позиция с количеством <= 0 удаляется.
type CartLine struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	ImageURL  string
	Quantity  int
}

func NewCartLine(product *Product, quantity int) CartLine {
	return CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
		Quantity:  quantity,
	}
}

// LineTotal возвращает price * quantity без округления.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart — набор позиций, не более одной на товар.
// Позиции идут в порядке добавления, он нужен только для стабильного вывода и заказа.
type Cart struct {
	Lines []CartLine
}

func NewCart(lines ...CartLine) *Cart {
	return &Cart{Lines: lines}
}

// Find возвращает индекс позиции товара или -1.
func (c Cart) Find(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}

	return -1
}

// Line возвращает позицию по идентификатору товара.
func (c Cart) Line(productID string) (CartLine, bool) {
	idx := c.Find(productID)
	if idx < 0 {
		return CartLine{}, false
	}

	return c.Lines[idx], true
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount считает суммарное количество единиц товара (бейдж корзины).
func (c Cart) ItemCount() int {
	count := 0
	for _, l := range c.Lines {
		count += l.Quantity
	}

	return count
}

// Clone возвращает независимую копию корзины.
func (c Cart) Clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)

	return Cart{Lines: lines}
}

// RestoreCart собирает корзину из сохраненных позиций. Позиции без товара или с количеством <= 0
// отбрасываются, повторы одного товара сливаются в первую позицию.
func RestoreCart(lines []CartLine) Cart {
	cart := Cart{Lines: make([]CartLine, 0, len(lines))}
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity <= 0 {
			continue
		}

		if idx := cart.Find(l.ProductID); idx >= 0 {
			cart.Lines[idx].Quantity += l.Quantity
			continue
		}
		cart.Lines = append(cart.Lines, l)
	}

	return cart
}
