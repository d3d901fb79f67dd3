// Package cli provides the interactive shopkeeper command-line client.
//
// It wires configuration, the gRPC shop client and a REPL. Typical flow:
// sign up or log in, then inspect and change the cart.
//
// Commands:
//   - signup / login / logout
//   - add <item>, remove <item>: change the quantity of one cart slot
//   - cart: list non-empty cart slots
//   - upload <path>: send a product image to the HTTP API
//   - ping: check that the server is reachable
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
