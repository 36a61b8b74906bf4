// Package smcore is the runtime for generated control-plane resource
// bindings: the transform codec that moves typed objects to and from wire
// payloads, the paginated resource iterator, the status waiter, the
// configuration-defaults resolver, and the error taxonomy shared by all
// generated classes.
//
// Code generation lives under smgen; the shared shape-graph model lives in
// the schema package. Generated resource types call into this package and
// carry no logic of their own beyond field layout and operation wiring.
package smcore
