package models

import "github.com/dmitrijs2005/shopkeeper/internal/common"

// Cart maps a product slot to the quantity a shopper holds. Quantities are
// never negative and slots are never negative.
type Cart map[int]int

// NewCart returns a cart with slots 0..size-1 set to zero.
func NewCart(size int) Cart {
	if size < 0 {
		size = 0
	}
	c := make(Cart, size)
	for i := 0; i < size; i++ {
		c[i] = 0
	}
	return c
}

// Increment adds one unit to slot, creating the slot if it is absent.
func (c Cart) Increment(slot int) error {
	if slot < 0 {
		return common.ErrInvalidSlot
	}
	c[slot]++
	return nil
}

// Decrement removes one unit from slot. A slot that is absent or already at
// zero is left as it is.
func (c Cart) Decrement(slot int) error {
	if slot < 0 {
		return common.ErrInvalidSlot
	}
	if c[slot] > 0 {
		c[slot]--
	}
	return nil
}

// Quantity returns the amount held in slot; absent slots hold zero.
func (c Cart) Quantity(slot int) int {
	return c[slot]
}

func (c Cart) Clone() Cart {
	if c == nil {
		return nil
	}
	out := make(Cart, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
