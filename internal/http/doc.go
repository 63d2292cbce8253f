// Package http exposes the reservation service over JSON.
//
// The router serves the following endpoints:
//   - GET /rooms, POST /rooms, GET|PUT|DELETE /rooms/{id}: room catalog
//     exchanging the `roomDTO` payload defined in room_handler.go.
//   - GET /rooms/{id}/reservations: reservations of one room in creation order.
//     Optional `start` and `end` query parameters (RFC 3339) restrict the result
//     to reservations overlapping that window.
//   - GET /equipment, POST /equipment, GET|PUT|DELETE /equipment/{id}: equipment
//     catalog exchanging the `equipmentDTO` payload defined in equipment_handler.go.
//   - GET /reservations, POST /reservations, GET|DELETE /reservations/{id}:
//     booking endpoints. POST takes {"room_id","requester","start","end"} with
//     RFC 3339 timestamps and answers 201 with the admitted reservation.
//   - GET /healthz: pings the backing store.
//
// Mutating room and equipment requests, and reservation deletes, pass through
// RequireAdmin. Failures are reported as {"error_code","message","errors"} where
// message is the service's own error text.
package http
