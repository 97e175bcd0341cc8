// Package thirdparty tests the client against third party WebSocket servers.
package thirdparty
