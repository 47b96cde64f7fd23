// Package api handles incoming HTTP requests, request validation and
// response formatting. It acts as an adapter between HTTP clients and the
// card and review services.
//
// All routes are scoped to an owner: /api/owners/{ownerID}/... The owner ID
// is taken from the path as-is; authenticating it is the job of whatever
// fronts this service.
package api
