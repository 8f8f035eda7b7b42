// Package http contains the HTTP handlers of the dashboard API.
//
// Handlers translate between the wire format and the service layer and
// report failures as RFC 7807 problem documents. They hold no business
// logic of their own.
package http
