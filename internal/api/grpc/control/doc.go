// Package control exposes the autoclicker daemon over gRPC.
//
// Messages are google.protobuf.Struct values, so the service is declared by
// hand instead of being generated from a .proto file. Slots are 1-based on
// the wire and 0-based in the Service interface.
package control
