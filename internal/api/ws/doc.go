// Package ws streams status events to WebSocket clients as JSON.
package ws
