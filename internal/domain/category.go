package domain

// Category описывает категорию с количеством товаров в ней
type Category struct {
	Name  string
	Count int
}

func NewCategory(name string, count int) *Category {
	return &Category{
		Name:  name,
		Count: count,
	}
}
