// Package studio serves a mounted composition over HTTP for preview tools.
//
// Endpoints:
//
//	GET  /timeline             current registry snapshot
//	POST /timeline/visibility  {"id": "...", "visible": false}
//	GET  /timeline/ws          websocket; one snapshot per change
//	GET  /audio/plan           audio plan built from the current segments
//	GET  /frame/{frame}        rendered frame
//
// The websocket sends the current snapshot on connect. A slow client skips
// intermediate snapshots and always receives the latest one.
package studio
