// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key header or api_key query). An empty
//     key disables it; public paths such as /health bypass it.
//   - rayid: assigns every request a ray id, stores it in Locals("ray_id")
//     for logger.WithRayID and echoes it in the X-Ray-ID response header.
//
// Register rayid first so every later log line carries the id.
package middleware
