package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
)

var errUsageItem = errors.New("usage: add|remove <item id>")

func parseSlot(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errUsageItem
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil || slot < 0 {
		return 0, errUsageItem
	}
	return slot, nil
}

// Add increments the quantity of the item given in args.
func (a *App) Add(ctx context.Context, args []string) error {
	return a.changeCart(ctx, args, a.client.AddToCart, "Added")
}

// Remove decrements the quantity of the item given in args.
func (a *App) Remove(ctx context.Context, args []string) error {
	return a.changeCart(ctx, args, a.client.RemoveFromCart, "Removed")
}

func (a *App) changeCart(ctx context.Context, args []string, fn func(context.Context, int) error, ack string) error {
	slot, err := parseSlot(args)
	if err != nil {
		return err
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := fn(ctx, slot); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.client.Logout()
			a.email = ""
			return fmt.Errorf("session expired, please log in again")
		}
		return err
	}
	printlnFn(ack)
	return nil
}

// Cart prints the non-empty cart slots.
func (a *App) Cart(ctx context.Context) error {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	items, err := a.client.GetCartItems(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		printlnFn("Cart is empty")
		return nil
	}
	for _, it := range items {
		printlnFn(fmt.Sprintf("item %d: %d", it.Slot, it.Quantity))
	}
	return nil
}

// Ping reports whether the server answers.
func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		return err
	}
	printlnFn("Server is online")
	return nil
}
