// Package api exposes the review scheduler over HTTP: the authenticated review
// endpoints used by learners' clients and the lifecycle hooks called by the
// subsystems that own users and content. Handlers decode and validate JSON,
// call the review service and map its errors to status codes.
package api
