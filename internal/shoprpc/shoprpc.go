// Package shoprpc names the gRPC service shared by the shopkeeper server and
// its CLI client. Messages are protobuf well-known types, so no generated
// code is needed.
package shoprpc

const ServiceName = "shopkeeper.ShopService"

const (
	MethodSignup         = "/" + ServiceName + "/Signup"
	MethodLogin          = "/" + ServiceName + "/Login"
	MethodAddToCart      = "/" + ServiceName + "/AddToCart"
	MethodRemoveFromCart = "/" + ServiceName + "/RemoveFromCart"
	MethodGetCartItems   = "/" + ServiceName + "/GetCartItems"
	MethodPing           = "/" + ServiceName + "/Ping"
)

// Field names of the Struct messages taken by Signup and Login.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)
