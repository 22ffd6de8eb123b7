// Package extension provides run-time registries that resolve the late-bound
// names stored in a bulk request: action services by service name and target
// repositories by target kind.
//
// The registries are normally populated through the root fanout package,
// therefore most applications do not need to import this package directly.
package extension
