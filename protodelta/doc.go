// Package protodelta records Protocol Buffers messages as undo records and
// dispatches them back to typed handlers.
//
// Each message is packed into a [anypb.Any] so that the record payload
// identifies its own type. The record tag remains available to the host for
// grouping and telemetry.
package protodelta
