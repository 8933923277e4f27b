// Package backend is a development REST backend implementing the session contract
// the console client depends on: per-realm login, refresh and auth endpoints with
// cookie-carried access and refresh tokens.
package backend
